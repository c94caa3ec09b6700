package service

type AuthServiceInterface interface {
	Register(email, username, password string) (*RegisterResult, error)
	Login(username, password string) (*LoginResult, error)
	ResetPassword(username, newPassword string) error
}
