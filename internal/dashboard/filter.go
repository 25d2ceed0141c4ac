package dashboard

import "strings"

// Filter keeps users whose name, email, phone number, grade or year
// contains q, ignoring case. An empty query keeps everyone.
func Filter(users []User, q string) []User {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return users
	}

	out := make([]User, 0, len(users))
	for _, u := range users {
		for _, field := range []string{u.Name, u.Email, u.PhoneNumber, u.Grade, u.Year} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
