package chat

// User-facing texts of the booking dialogue. The bot speaks Russian; the
// trigger keyword is accepted in both alphabets.
const (
	msgGreeting        = `Привет! Если вы хотите начать поиск тура, напишите "тур".`
	msgIdleHint        = `Если вы хотите начать поиск тура, напишите "тур".`
	msgAskDeparture    = "Введите город вылета:"
	msgAskCountry      = `В какую страну вы хотите поехать? Введите первые буквы названия страны (например: "Тур" для Турции).`
	msgCountryUnknown  = "Страна не найдена. Пожалуйста, введите первые буквы названия страны или название города."
	msgAskNights       = `Сколько ночей вы хотите отдыхать? Укажите диапазон через дефис, например "7-14".`
	msgNightsFormat    = `Не удалось разобрать диапазон ночей. Введите два числа через дефис, например "7-14".`
	msgAskAdults       = "Сколько взрослых будет в поездке? (от 1 до 6)"
	msgAdultsFormat    = "Пожалуйста, введите число от 1 до 6:"
	msgAskChildren     = "Сколько детей будет в поездке? (от 0 до 4)"
	msgChildrenFormat  = "Пожалуйста, введите число от 0 до 4:"
	msgSearchStarted   = "Начинаем поиск туров..."
	msgSubmitFailed    = "Произошла ошибка при отправке запроса на поиск туров. Попробуйте позже."
	msgSearchTimeout   = "Поиск занял слишком много времени. Попробуйте позже."
	msgNoResults       = "К сожалению, не удалось найти подходящие туры."
	msgResultsFailed   = "Произошла ошибка при получении результатов поиска."
	msgResultsFooter   = `Это были первые 5 отелей из списка. Чтобы начать новый поиск, напишите "тур".`
	msgFlowFailure     = `Произошла ошибка. Напишите "тур", чтобы начать поиск заново.`
	msgFreeformFailure = `Извините, произошла ошибка. Попробуйте позже или напишите "тур" для поиска тура.`
)

// personaPrompt is the fixed system instruction for free-form replies.
const personaPrompt = "Ты дружелюбный ассистент туристического агентства. " +
	"Отвечай кратко и по-русски. " +
	`Если пользователь хочет подобрать тур, предложи написать слово "тур".`
