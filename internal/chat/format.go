package chat

import (
	"fmt"
	"strings"

	"github.com/hussainn7/TravellingService/internal/tourvisor"
)

// Reply caps keep chat output short: one message per hotel, a handful of
// tour lines inside each.
const (
	maxHotels        = 5
	maxToursPerHotel = 3
)

// formatHotels renders the result list as one message per hotel,
// truncated to the caps above.
func formatHotels(hotels []tourvisor.Hotel) []string {
	n := len(hotels)
	if n > maxHotels {
		n = maxHotels
	}
	messages := make([]string, 0, n)
	for _, h := range hotels[:n] {
		messages = append(messages, formatHotel(h))
	}
	return messages
}

func formatHotel(h tourvisor.Hotel) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏨 %s %s⭐\n", h.Name, h.Stars)
	fmt.Fprintf(&b, "📍 %s, %s\n", h.Country, h.Region)
	fmt.Fprintf(&b, "💰 Цена от: %s руб.\n", h.Price)
	if h.Rating != "" && h.Rating != "0" {
		fmt.Fprintf(&b, "⭐ Рейтинг: %s\n", h.Rating)
	}
	if h.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", h.Description)
	}

	if len(h.Tours) > 0 {
		b.WriteString("\n🎫 Доступные туры:\n")
		tours := h.Tours
		if len(tours) > maxToursPerHotel {
			tours = tours[:maxToursPerHotel]
		}
		for _, t := range tours {
			fmt.Fprintf(&b, "\n🔸 Вылет: %s\n", t.FlyDate)
			fmt.Fprintf(&b, "  ⌛ Ночей: %d\n", t.Nights)
			fmt.Fprintf(&b, "  💶 Цена: %s руб.\n", t.Price)
			fmt.Fprintf(&b, "  🍽 Питание: %s\n", t.Meal)
		}
	}

	if h.FullDescLink != "" {
		fmt.Fprintf(&b, "\n🔗 Подробнее: http://manyhotels.ru/%s", h.FullDescLink)
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatStatusSummary(st tourvisor.Status) string {
	return fmt.Sprintf(
		"Поиск завершен!\nНайдено отелей: %d\nНайдено туров: %d\nМинимальная цена: %s руб.",
		st.HotelsFound, st.ToursFound, st.MinPrice,
	)
}
