package handler

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// authResponse is returned by both register and login.
type authResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
