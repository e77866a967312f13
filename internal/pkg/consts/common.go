package consts

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PostTypeArticle = "article"
	PostTypeDSA     = "dsa"
)

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

const (
	AnonymousIdentity   = "anon"
	AnonymousReaderName = "Anonymous Reader"
	UnknownUserName     = "Unknown User"
	DeletedPostTitle    = "Deleted Post"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// ReaderSessionHeader 匿名读者携带的弱身份
const ReaderSessionHeader = "X-Reader-Session"
