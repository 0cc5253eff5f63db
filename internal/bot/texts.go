package bot

// User-facing texts.
const (
	textGreeting        = "👋 Привіт, %s!"
	textWeatherAtHome   = "🏙️ Погода в %s зараз:\n\n%s"
	textCityRequired    = "❌ Вкажи місто або /profile"
	textCityNotFound    = "❌ Місто не знайдено"
	textSetCityButton   = "🏙️Встановити %s як моє місто"
	textProfileButton   = "👤 Профіль"
	textProfile         = "👤 Ім'я: %s\n🌆 Місто: %s"
	textNoCity          = "--"
	textChangeName      = "✏️ Змінити ім'я"
	textMyCityWeather   = "☁️ Погода в моєму місті"
	textChangeCity      = "🌆 Змінити місто"
	textPickCity        = "🌆 Вибрати місто з списку"
	textHistoryButton   = "🧾 Історія пошуку"
	textAskName         = "✏️ Введи нове ім'я:"
	textNameChanged     = "✅ Ім'я змінено"
	textDirectoryEmpty  = "❌ Список міст порожній"
	textPickLetter      = "🔤 Обери першу букву міста:"
	textNoCitiesLetter  = "Немає міст на цю букву"
	textCitiesOnLetter  = "🏙️ Міста на букву \"%s\" (%d):"
	textBackToLetters   = "🔙 Назад до букв"
	textCityChosen      = "✅ %s — тепер твоє місто"
	textCitySet         = "✅ Місто успішно встановлено: %s\n\nПовернись в /profile"
	textHistory         = "🧾 Історія пошуку:\n\n%s"
	textHistoryEmpty    = "Порожньо"
	textHistoryLine     = "• %s — %s"
	textWeatherFailed   = "❌"
	textGenericFailure  = "⚠️ Виникла помилка. Спробуй /start"
	textTooFast         = "⏳ Зачекай трохи"
	textStats           = "📊 Профілів: %d\n🏙️ Міст: %d\n🔖 Версія: %s"
	textTemperatureLine = "🌡️ Температура: %s°C (відчувається: %s°C)"
	textWindLine        = "💨 Вітер: %s км/год"
	textHumidityLine    = "💧 Вологість: %s%%"
	textConditionLine   = "☁️ %s"
)

// Command descriptions shown in the Telegram menu.
const (
	descStart   = "Почати"
	descProfile = "Мій профіль"
	descWeather = "Погода: /weather Київ"
	descStats   = "Статистика"
)
