package service

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"time"

	"github.com/jinzhu/copier"
)

// timeToMillis 模型时间统一以毫秒时间戳下发
var timeToMillis = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: int64(0),
			Fn: func(src interface{}) (interface{}, error) {
				t, _ := src.(time.Time)
				if t.IsZero() {
					return int64(0), nil
				}
				return t.UnixMilli(), nil
			},
		},
	},
}

func toAuthorDTO(user *model.User) *dto.AuthorDTO {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &dto.AuthorDTO{
		ID:    user.ID,
		Name:  user.Name,
		Image: user.Image,
	}
}

func toPostDTO(post *model.Post, withContent bool) *dto.PostDTO {
	out := &dto.PostDTO{}
	_ = copier.CopyWithOption(out, post, timeToMillis)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !withContent {
		out.Content = ""
	}
	out.Author = toAuthorDTO(&post.User)
	return out
}

func toPostDTOs(posts []*model.Post) []*dto.PostDTO {
	out := make([]*dto.PostDTO, 0, len(posts))
	for _, post := range posts {
		out = append(out, toPostDTO(post, false))
	}
	return out
}

// toUserDTO withEmail 为 false 时用于公开展示
func toUserDTO(user *model.User, withEmail bool) *dto.UserDTO {
	out := &dto.UserDTO{}
	_ = copier.CopyWithOption(out, user, timeToMillis)
	if !withEmail {
		out.Email = ""
		out.Theme = ""
	}
	return out
}

func toCommentDTO(comment *model.Comment, author *model.User) *dto.CommentDTO {
	out := &dto.CommentDTO{}
	_ = copier.CopyWithOption(out, comment, timeToMillis)
	out.Author = toAuthorDTO(author)
	return out
}

func toAuthorStatsDTO(posts, views, likes, comments, saves, readTimeMs int64) *dto.AuthorStatsDTO {
	return &dto.AuthorStatsDTO{
		TotalPosts:      posts,
		TotalViews:      views,
		TotalLikes:      likes,
		TotalComments:   comments,
		TotalSaves:      saves,
		TotalReadTimeMs: readTimeMs,
	}
}
