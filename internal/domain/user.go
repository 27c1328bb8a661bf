package domain

import "time"

// User owns terrains. TelegramID is 0 for accounts created outside the bot.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	CreatedAt  time.Time
}

func (u *User) HasTelegram() bool {
	return u.TelegramID != 0
}
