package rules

// OtherIncome is the catch-all bucket for income-side and merged movements.
const OtherIncome = "Другое+"

// Default returns the built-in rule list for the bank's category export.
func Default() []Rule {
	return []Rule{
		{Name: "strip-tag", Match: `, #.*`, Replace: "", When: Always},
		// \+? keeps an already relabeled category stable.
		{Name: "income-other", Match: `Другое\+?`, Replace: OtherIncome, When: IncomeNonZero},
		{Name: "housing", Match: `Дом, квартира.*`, Replace: "Дом, квартира", When: Always},
		{Name: "correction", Match: `Correction`, Replace: OtherIncome, When: Always},
		{Name: "investments", Match: `Инвестиции`, Replace: OtherIncome, When: Always},
		{Name: "cashback", Match: `Кэшбэк`, Replace: OtherIncome, When: Always},
	}
}

// DefaultOrder is the curated column order used by the fixed ordering policy.
func DefaultOrder() []string {
	return []string{
		"Зарплата / Работа",
		"Зарплата / Доп. работа",
		OtherIncome,
		"Проезд",
		"Еда на заказ",
		"Здоровье",
		"Дом, квартира",
		"Интернет",
		"Телефон",
		"Хоз. Товары",
		"Продукты",
		"Отдых",
		"Спорт/здоровье",
		"Подписки",
		"Подарки",
		"Другое",
		"Авто",
		"Отпуск",
		"Крупняк",
	}
}
