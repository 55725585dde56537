package locale

var english = map[Key]string{
	KeyWelcome: `🤖 *Crypto Price Alert Bot*

Welcome! I can help you track cryptocurrency prices and set price alerts.

*Available Commands:*
/price <SYMBOL> - Get current price (e.g., /price BTC)
/alert <SYMBOL> <PRICE> <above/below> - Set price alert (e.g., /alert BTC 50000 above)
/list - Show your active alerts
/watch <SYMBOL> - Add to watchlist
/watchlist - Show your watchlist with current prices
/remove <SYMBOL> - Remove alerts and watchlist entry
/unwatch <SYMBOL> - Remove from watchlist only
/lang - Change language / Изменить язык
/help - Show this help message

*Supported Cryptocurrencies:*
{symbols}

Let's start tracking! 🚀`,
	KeyLangChanged: "✅ Language changed to English",
	KeyLangPrompt:  "Choose your language:\nВыберите язык:",
	KeyPriceUsage:  "❌ Please specify a cryptocurrency symbol.\nExample: /price BTC",
	KeyPriceNotFound: "❌ Could not find price for {symbol}.\n" +
		"Please use a supported cryptocurrency symbol.",
	KeyPriceInfo: `💰 *{symbol} Price*

Current Price: ${price}
24h Change: {change}
Market Cap: ${market_cap}

_Updated: {time}_`,
	KeyAlertUsage: "❌ Invalid format.\n" +
		"Usage: /alert <SYMBOL> <PRICE> <above/below>\n" +
		"Example: /alert BTC 50000 above",
	KeyAlertInvalidPrice:     "❌ Invalid price. Please enter a positive number.",
	KeyAlertInvalidDirection: "❌ Direction must be 'above' or 'below'",
	KeyAlertUnsupported:      "❌ {symbol} is not supported.\nUse /help to see supported cryptocurrencies.",
	KeyAlertSet:              "✅ Alert set!\nI'll notify you when {symbol} goes {direction} ${price}",
	KeyListEmpty:             "📭 You have no active alerts.\nUse /alert to set one!",
	KeyListHeader:            "🔔 *Your Active Alerts:*",
	KeyWatchUsage:            "❌ Please specify a cryptocurrency symbol.\nExample: /watch BTC",
	KeyWatchUnsupported:      "❌ {symbol} is not supported.\nUse /help to see supported cryptocurrencies.",
	KeyWatchExists:           "ℹ️ {symbol} is already in your watchlist.",
	KeyWatchAdded:            "✅ {symbol} added to your watchlist!",
	KeyWatchlistEmpty:        "📭 Your watchlist is empty.\nUse /watch <SYMBOL> to add cryptocurrencies!",
	KeyWatchlistHeader:       "👁️ *Your Watchlist:*",
	KeyRemoveUsage:           "❌ Please specify a cryptocurrency symbol.\nExample: /remove BTC",
	KeyRemoveSuccess:         "✅ All alerts for {symbol} removed.",
	KeyRemoveNotFound:        "ℹ️ No alerts found for {symbol}.",
	KeyRemoveWatchlist:       "✅ {symbol} removed from watchlist.",
	KeyUnwatchUsage:          "❌ Please specify a cryptocurrency symbol.\nExample: /unwatch BTC",
	KeyUnwatchNotFound:       "ℹ️ {symbol} is not in your watchlist.",
	KeyAlertTriggered: `🚨 *PRICE ALERT TRIGGERED!*

{symbol} has reached your target!

Target: ${target} ({direction})
Current Price: ${current}

_Alert time: {time}_`,
	KeyAbove:           "above",
	KeyBelow:           "below",
	KeyColumnSymbol:    "Coin",
	KeyColumnTarget:    "Target",
	KeyColumnDirection: "Direction",
	KeyColumnPrice:     "Price",
	KeyColumnChange:    "24h",
	KeyInternalError:   "⚠️ Something went wrong, please try again later.",
}

var russian = map[Key]string{
	KeyWelcome: `🤖 *Бот для отслеживания криптовалют*

Добро пожаловать! Я помогу отслеживать цены на криптовалюты и настраивать оповещения.

*Доступные команды:*
/price <СИМВОЛ> - Узнать текущую цену (например, /price BTC)
/alert <СИМВОЛ> <ЦЕНА> <выше/ниже> - Установить оповещение (например, /alert BTC 50000 выше)
/list - Показать активные оповещения
/watch <СИМВОЛ> - Добавить в список отслеживания
/watchlist - Показать список отслеживаемых монет
/remove <СИМВОЛ> - Удалить оповещения и монету из списка
/unwatch <СИМВОЛ> - Убрать монету из списка отслеживания
/lang - Change language / Изменить язык
/help - Показать справку

*Поддерживаемые криптовалюты:*
{symbols}

Начнем отслеживание! 🚀`,
	KeyLangChanged: "✅ Язык изменен на русский",
	KeyLangPrompt:  "Выберите язык:\nChoose your language:",
	KeyPriceUsage:  "❌ Укажите символ криптовалюты.\nПример: /price BTC",
	KeyPriceNotFound: "❌ Не удалось найти цену для {symbol}.\n" +
		"Используйте поддерживаемую криптовалюту.",
	KeyPriceInfo: `💰 *Цена {symbol}*

Текущая цена: ${price}
Изменение за 24ч: {change}
Капитализация: ${market_cap}

_Обновлено: {time}_`,
	KeyAlertUsage: "❌ Неверный формат.\n" +
		"Использование: /alert <СИМВОЛ> <ЦЕНА> <выше/ниже>\n" +
		"Пример: /alert BTC 50000 выше",
	KeyAlertInvalidPrice:     "❌ Неверная цена. Введите положительное число.",
	KeyAlertInvalidDirection: "❌ Направление должно быть 'выше' или 'ниже' (или 'above'/'below')",
	KeyAlertUnsupported:      "❌ {symbol} не поддерживается.\nИспользуйте /help для списка поддерживаемых монет.",
	KeyAlertSet:              "✅ Оповещение установлено!\nЯ уведомлю вас, когда {symbol} будет {direction} ${price}",
	KeyListEmpty:             "📭 У вас нет активных оповещений.\nИспользуйте /alert чтобы создать!",
	KeyListHeader:            "🔔 *Ваши активные оповещения:*",
	KeyWatchUsage:            "❌ Укажите символ криптовалюты.\nПример: /watch BTC",
	KeyWatchUnsupported:      "❌ {symbol} не поддерживается.\nИспользуйте /help для списка поддерживаемых монет.",
	KeyWatchExists:           "ℹ️ {symbol} уже в вашем списке отслеживания.",
	KeyWatchAdded:            "✅ {symbol} добавлен в список отслеживания!",
	KeyWatchlistEmpty:        "📭 Ваш список отслеживания пуст.\nИспользуйте /watch <СИМВОЛ> для добавления!",
	KeyWatchlistHeader:       "👁️ *Ваш список отслеживания:*",
	KeyRemoveUsage:           "❌ Укажите символ криптовалюты.\nПример: /remove BTC",
	KeyRemoveSuccess:         "✅ Все оповещения для {symbol} удалены.",
	KeyRemoveNotFound:        "ℹ️ Оповещения для {symbol} не найдены.",
	KeyRemoveWatchlist:       "✅ {symbol} удален из списка отслеживания.",
	KeyUnwatchUsage:          "❌ Укажите символ криптовалюты.\nПример: /unwatch BTC",
	KeyUnwatchNotFound:       "ℹ️ {symbol} нет в вашем списке отслеживания.",
	KeyAlertTriggered: `🚨 *ОПОВЕЩЕНИЕ О ЦЕНЕ!*

{symbol} достиг вашей целевой цены!

Цель: ${target} ({direction})
Текущая цена: ${current}

_Время оповещения: {time}_`,
	KeyAbove:           "выше",
	KeyBelow:           "ниже",
	KeyColumnSymbol:    "Монета",
	KeyColumnTarget:    "Цель",
	KeyColumnDirection: "Направление",
	KeyColumnPrice:     "Цена",
	KeyColumnChange:    "24ч",
}
