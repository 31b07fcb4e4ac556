package model

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest accepts either the email or the username as Identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	DueDate     *string `json:"dueDate" validate:"omitnil,duedate"`
	Category    *string `json:"category" validate:"omitnil,oneof=Urgent Non-Urgent"`
}

type UpdateTodoRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	DueDate     *string `json:"dueDate" validate:"omitnil,duedate"`
	Category    *string `json:"category" validate:"omitnil,oneof=Urgent Non-Urgent"`
	Completed   *bool   `json:"completed"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
