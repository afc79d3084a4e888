package models

// Player — запись справочника игроков. Справочник ведёт внешняя часть продукта,
// движок читает отображаемые данные и никогда их не изменяет.
type Player struct {
	ID          int     `json:"id" db:"id"`
	DisplayName string  `json:"display_name" db:"display_name"`
	AvatarKey   *string `json:"-" db:"avatar_key"`
	AvatarURL   *string `json:"avatar_url,omitempty" db:"-"`
}
