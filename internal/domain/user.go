package domain

// User is the provider profile projection shown in the dashboard header.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	GlobalName    *string `json:"global_name,omitempty"`
	Discriminator string  `json:"discriminator,omitempty"`
	Avatar        *string `json:"avatar,omitempty"`
}

// DisplayName prefers the global name over the username.
func (u User) DisplayName() string {
	if u.GlobalName != nil && *u.GlobalName != "" {
		return *u.GlobalName
	}
	return u.Username
}

type Guild struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

// File is an uploaded audio clip owned by the user.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
