package profile

type Profile struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Location  string   `json:"location,omitempty"`
	Company   string   `json:"company,omitempty"`
	Position  string   `json:"position,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Skills    []string `json:"skills"`
	Education string   `json:"education,omitempty"`
}

// Update is a partial profile update. Nil fields keep their stored value.
type Update struct {
	Name      *string   `json:"name,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Location  *string   `json:"location,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Position  *string   `json:"position,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Skills    *[]string `json:"skills,omitempty"`
	Education *string   `json:"education,omitempty"`
}

func (u Update) Empty() bool {
	return u.Name == nil && u.Phone == nil && u.Location == nil && u.Company == nil &&
		u.Position == nil && u.Bio == nil && u.Skills == nil && u.Education == nil
}

// Apply returns p with the update applied locally.
func (u Update) Apply(p Profile) Profile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Company != nil {
		p.Company = *u.Company
	}
	if u.Position != nil {
		p.Position = *u.Position
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Skills != nil {
		p.Skills = append([]string(nil), (*u.Skills)...)
	}
	if u.Education != nil {
		p.Education = *u.Education
	}
	return p
}
