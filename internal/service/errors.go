package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid          = errors.New("参数错误")
	ErrUnauthenticated       = errors.New("请先登录")
	ErrUserNotFound          = errors.New("用户不存在")
	ErrPostNotFound          = errors.New("帖子不存在")
	ErrCommentNotFound       = errors.New("评论不存在")
	ErrNotificationNotFound  = errors.New("通知不存在")
	ErrSlugExists            = errors.New("Slug 已存在")
	ErrInvalidSlug           = errors.New("Slug 只能包含小写字母、数字和连字符")
	ErrInvalidRole           = errors.New("无效的角色")
	ErrInvalidTheme          = errors.New("无效的主题")
	ErrSuperAdminProtected   = errors.New("超级管理员不可修改或删除")
	ErrCannotDeleteSelf      = errors.New("不能删除自己")
	ErrWebhookSecretMismatch = errors.New("Webhook 签名校验失败")
	UnauthorizedError        = errors.New("权限不足")
	UnExpectedError          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          BadRequest,
	ErrUnauthenticated:       Unauthorized,
	ErrUserNotFound:          NotFound,
	ErrPostNotFound:          NotFound,
	ErrCommentNotFound:       NotFound,
	ErrNotificationNotFound:  NotFound,
	ErrSlugExists:            BadRequest,
	ErrInvalidSlug:           BadRequest,
	ErrInvalidRole:           BadRequest,
	ErrInvalidTheme:          BadRequest,
	ErrSuperAdminProtected:   Forbidden,
	ErrCannotDeleteSelf:      BadRequest,
	ErrWebhookSecretMismatch: Unauthorized,
	UnauthorizedError:        Forbidden,
	UnExpectedError:          InternalServerError,
}
