package consts

const (
	PostDirtyKey      = "post:dirty"
	PostLikeKey       = "post:like:"
	PostSaveKey       = "post:save:"
	PostCommentKey    = "post:comment:"
	PostMetrics7Days  = "post:metrics:7days:"
	PostMetrics30Days = "post:metrics:30days:"
	TrendingKey       = "ranking:trending"
	TopWritersKey     = "ranking:top_writers"
	TokenRevokedKey   = "auth:revoked:"
)

const (
	TrendingRebuildLock = "lock:ranking:trending"
)
