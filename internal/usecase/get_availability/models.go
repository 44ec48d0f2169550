package get_availability

import "time"

// Статусы корзины почасовой сетки
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

// Request модель запроса доступности услуги на филиале
type Request struct {
	BranchID  int64
	ServiceID int64
	DateFrom  time.Time
	DateTo    time.Time
}

// Pool описание пула взаимозаменяемых ресурсов
// Клиент выбирает пул, конкретную комнату привязывает аллокатор
// RoomNumber - номер первого ресурса пула, представительная метка для витрины
type Pool struct {
	Key             string   `json:"key"`
	ArrangementType string   `json:"arrangementType"`
	RoomNumber      string   `json:"roomNumber"`
	BasePrice       float64  `json:"basePrice"`
	DiscountPrice   *float64 `json:"discountPrice,omitempty"`
	MemberCount     int      `json:"memberCount"`
}

// Response модель ответа с пулами и почасовой сеткой доступности
// availability[poolKey][date][hour] = "available" | "booked"
type Response struct {
	Pools        []Pool                                  `json:"pools"`
	Availability map[string]map[string]map[string]string `json:"availability"`
}
