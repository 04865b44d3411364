package oxy_adapter

// validateResponse - ответ GET /session/validate.
type validateResponse struct {
	Valid bool     `json:"valid"`
	User  *userDTO `json:"user"`
}

type userDTO struct {
	ID       string  `json:"id"`
	MongoID  string  `json:"_id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Name     nameDTO `json:"name"`
	Avatar   string  `json:"avatar"`
}

type nameDTO struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Full  string `json:"full"`
}

func (n nameDTO) display() string {
	if n.Full != "" {
		return n.Full
	}
	if n.First != "" && n.Last != "" {
		return n.First + " " + n.Last
	}
	return n.First + n.Last
}

func (u *userDTO) id() string {
	if u.ID != "" {
		return u.ID
	}
	return u.MongoID
}
