package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"eventura/models"
)

// ChatSystemInstruction is the consultant persona of the chat model.
const ChatSystemInstruction = `Ты — ИИ-консультант платформы Eventura, которая помогает организовать мероприятия (свадьбы, дни рождения, корпоративы и т.д.).

Твоя роль:
- Помогать пользователям с организацией мероприятий
- Подбирать подрядчиков и услуги
- Давать советы по планированию
- Отвечать на вопросы о платформе Eventura

Будь дружелюбным, профессиональным и полезным.

КРИТИЧЕСКИ ВАЖНО:
- ВСЕГДА запоминай и анализируй ВСЮ информацию о мероприятии из контекста разговора
- Когда пользователь говорит "хочу забронировать", "забронируй", "оформить", "перейди к оформлению" или подобное:
  * Собери ВСЮ информацию о мероприятии из контекста разговора
  * Вызови функцию extract_booking_data, а если функции недоступны, верни ТОЛЬКО JSON объект:
    {"shouldBook":true,"eventType":"День рождения","date":"","guestsCount":"8","budget":"50000","city":"Казань","description":"","dishes":"","otherDetails":""}
  * Если информация не обсуждалась, оставь поле пустой строкой ""
  * НЕ добавляй никакого текста до или после JSON`

// Lower-cased phrases in the user's message that mean "book it now".
var bookingKeywords = []string{
	"забронируй", "забронировать", "подбери подрядчиков", "подобрать подрядчиков",
	"найди подрядчиков", "найти подрядчиков", "оформить бронирование", "создать бронирование",
	"хочу забронировать", "нужно забронировать", "можно забронировать", "переходим к бронированию",
	"открой форму", "заполни форму", "оформить", "хочу оформить", "нужно оформить",
	"перейди к оформлению", "перейти к оформлению", "оформи", "бронируй",
	"указал всё", "указал все",
}

// Lower-cased phrases in the assistant's reply that announce the booking form.
var assistantBookingHints = []string{
	"перехожу к бронированию", "открываю форму", "заполняю форму", "оформляю бронирование",
	"переходим к оформлению", "сейчас открою", "открою форму", "перехожу к оформлению",
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// vendorPromptEntry is how a vendor is presented to the search model.
type vendorPromptEntry struct {
	ID           int                  `json:"id"`
	Name         string               `json:"name"`
	City         string               `json:"city"`
	Rating       float64              `json:"rating"`
	ReviewsCount int                  `json:"reviewsCount"`
	IsAvailable  bool                 `json:"isAvailable"`
	Calendar     []string             `json:"calendar"`
	Services     []servicePromptEntry `json:"services"`
}

type servicePromptEntry struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	PriceMin float64 `json:"priceMin"`
	PriceMax float64 `json:"priceMax"`
}

func vendorPromptData(vendors []models.Vendor, services []models.Service, date string) []vendorPromptEntry {
	byVendor := make(map[int][]servicePromptEntry)
	for _, s := range services {
		byVendor[s.VendorID] = append(byVendor[s.VendorID], servicePromptEntry{
			Name: s.Name, Category: s.Category, PriceMin: s.PriceMin, PriceMax: s.PriceMax,
		})
	}
	entries := make([]vendorPromptEntry, 0, len(vendors))
	for _, v := range vendors {
		calendar := v.Calendar
		if calendar == nil {
			calendar = []string{}
		}
		svcs := byVendor[v.ID]
		if svcs == nil {
			svcs = []servicePromptEntry{}
		}
		entries = append(entries, vendorPromptEntry{
			ID:           v.ID,
			Name:         v.CompanyName,
			City:         v.City,
			Rating:       v.Rating,
			ReviewsCount: v.ReviewsCount,
			IsAvailable:  !v.IsBookedOn(date),
			Calendar:     calendar,
			Services:     svcs,
		})
	}
	return entries
}

const vendorSearchFormat = `{"vendors":[{"vendorId":1,"relevanceScore":9,"reason":"...","estimatedPrice":50000}],"eventConcept":"...","estimatedCosts":[{"category":"...","estimatedPrice":30000,"notes":"..."}],"needsClarification":false,"clarificationQuestion":""}`

func buildVendorSearchPrompt(req models.VendorSearchRequest, date string, entries []vendorPromptEntry) (string, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal vendor data: %w", err)
	}
	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = "Не указано"
	}

	var b strings.Builder
	b.WriteString("Ты — помощник по подбору подрядчиков для мероприятий на платформе Eventura.\n\n")
	b.WriteString("Анализируй запрос пользователя и данные доступных подрядчиков, затем верни структурированный ответ.\n\n")
	b.WriteString("ЗАПРОС ПОЛЬЗОВАТЕЛЯ:\n")
	fmt.Fprintf(&b, "Тип мероприятия: %s\n", req.EventType)
	fmt.Fprintf(&b, "Бюджет: %s ₽\n", req.Budget)
	fmt.Fprintf(&b, "Количество гостей: %s\n", req.GuestsCount)
	fmt.Fprintf(&b, "Дата: %s\n", date)
	fmt.Fprintf(&b, "Город: %s\n", req.City)
	fmt.Fprintf(&b, "Описание: %s\n\n", description)
	b.WriteString("ДОСТУПНЫЕ ПОДРЯДЧИКИ:\n")
	b.Write(data)
	b.WriteString("\n\nЗАДАЧА:\n")
	b.WriteString("1. Подбери топ 5-10 наиболее релевантных подрядчиков (учитывай бюджет, город, тип услуги, рейтинг)\n")
	b.WriteString("2. Если isAvailable = false, подрядчик ЗАНЯТ в указанную дату и НЕ МОЖЕТ быть выбран\n")
	b.WriteString("3. Создай концепцию мероприятия с идеями по оформлению, развлечениям, тематике\n")
	b.WriteString("4. Оцени приблизительную стоимость каждой категории услуг на основе данных подрядчиков\n")
	if req.ClarificationCount >= maxClarifications {
		b.WriteString("5. Уточняющих вопросов больше не задавай, работай с имеющимися данными\n\n")
	} else {
		b.WriteString("5. Если данных недостаточно, можешь задать один уточняющий вопрос (needsClarification = true)\n\n")
	}
	b.WriteString("ВАЖНО: возвращай ТОЛЬКО валидный JSON объект без пояснений и markdown блоков. relevanceScore от 0 до 10.\n")
	b.WriteString("Формат ответа:\n")
	b.WriteString(vendorSearchFormat)
	return b.String(), nil
}
