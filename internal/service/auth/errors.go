package auth

import "errors"

var (
	// ErrEmailTaken возвращается при регистрации на занятый email
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials возвращается при неверном email или пароле
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken возвращается для невалидного или просроченного токена
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
