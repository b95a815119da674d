package domain

// Session is the caller's capability token. It is passed to every
// collaborator call and never inspected by the view engine.
type Session struct {
	Token string
	User  string
}
