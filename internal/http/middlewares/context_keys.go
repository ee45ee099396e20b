package middlewares

const (
	CtxRequestID = "request_id"
	CtxUser      = "auth.user"
)
