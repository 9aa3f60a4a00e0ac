package model

// NoticeLevel is the severity of a user-visible notification
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient notification shown to the user, e.g. a toast
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Empty reports whether there is nothing to show
func (n Notice) Empty() bool {
	return n.Message == ""
}

func Success(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func Info(msg string) Notice    { return Notice{Level: NoticeInfo, Message: msg} }
func Warning(msg string) Notice { return Notice{Level: NoticeWarning, Message: msg} }
func Failure(msg string) Notice { return Notice{Level: NoticeError, Message: msg} }
