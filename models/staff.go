package models

// StaffRole — роль сотрудника клуба в JWT, выданном внешним сервисом аутентификации.
type StaffRole string

const (
	RoleAdmin    StaffRole = "admin"
	RoleFloorman StaffRole = "floorman"
	RoleCashier  StaffRole = "cashier"
)
