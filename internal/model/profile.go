package model

// Preferences are the user's toggles from the profile screen.
type Preferences struct {
	Notifications bool `json:"notifications"`
	DarkMode      bool `json:"darkMode"`
}

// UserProfile is the locally stored student profile.
type UserProfile struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Major       string      `json:"major"`
	Year        string      `json:"year"`
	Preferences Preferences `json:"preferences"`
}

// DefaultProfile is used until the user saves their own.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:  "John Doe",
		Email: "john.doe@university.edu",
		Major: "Computer Science",
		Year:  "Junior",
		Preferences: Preferences{
			Notifications: true,
			DarkMode:      true,
		},
	}
}
