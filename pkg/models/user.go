package models

// User 由设备码标识，同一设备码的多个连接共享一个会话
type User struct {
	ID   string
	Name string
}
