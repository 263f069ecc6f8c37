package presentation

const (
	AuthKey   = "Authorization"
	TypeKey   = "Content-Type"
	ReasonTag = "X-Reason"

	TTag      = "t"
	ExpTag    = "expiration"
	NostrKind = 24242

	UserKey  = "user"
	TokenKey = "token"

	IDParam   = "id"
	KindParam = "kind"
	TagParam  = "tag"
)
