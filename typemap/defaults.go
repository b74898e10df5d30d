package typemap

// defaultDefinitions seeds every new registry with the C++/Qt primitives
// and core value types. These are ordinary registry entries: mapping files
// may override any of them by name.
func defaultDefinitions() []Definition {
	return []Definition{
		{Name: "void", TargetType: "void", Category: CategoryPrimitive},
		{Name: "bool", TargetType: "boolean", Category: CategoryPrimitive},

		{Name: "int", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"signed", "signed int"}},
		{Name: "uint", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"unsigned", "unsigned int"}},
		{Name: "short", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"short int", "signed short"}},
		{Name: "ushort", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"unsigned short"}},
		{Name: "long", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"long int", "signed long"}},
		{Name: "ulong", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"unsigned long"}},
		{Name: "qlonglong", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"long long", "qint64"}},
		{Name: "qulonglong", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"unsigned long long", "quint64"}},
		{Name: "float", TargetType: "number", Category: CategoryPrimitive},
		{Name: "double", TargetType: "number", Category: CategoryPrimitive},
		{Name: "qreal", TargetType: "number", Category: CategoryPrimitive},
		{Name: "qint8", TargetType: "number", Category: CategoryPrimitive},
		{Name: "qint16", TargetType: "number", Category: CategoryPrimitive},
		{Name: "qint32", TargetType: "number", Category: CategoryPrimitive},
		{Name: "quint8", TargetType: "number", Category: CategoryPrimitive},
		{Name: "quint16", TargetType: "number", Category: CategoryPrimitive},
		{Name: "quint32", TargetType: "number", Category: CategoryPrimitive},
		{Name: "qsizetype", TargetType: "number", Category: CategoryPrimitive,
			Aliases: []string{"size_t"}},

		{Name: "char", TargetType: "string", Category: CategoryString,
			Aliases: []string{"uchar", "unsigned char", "wchar_t"}},
		{Name: "QString", TargetType: "string", Category: CategoryString},
		{Name: "QChar", TargetType: "string", Category: CategoryString},
		{Name: "QByteArray", TargetType: "string", Category: CategoryString},
		{Name: "QStringView", TargetType: "string", Category: CategoryString},
		{Name: "QLatin1String", TargetType: "string", Category: CategoryString},
		{Name: "std::string", TargetType: "string", Category: CategoryString},
		{Name: "QUrl", TargetType: "string", Category: CategoryString},
		{Name: "QUuid", TargetType: "string", Category: CategoryString},

		{Name: "QDate", TargetType: "Date", Category: CategoryValue},
		{Name: "QTime", TargetType: "Date", Category: CategoryValue},
		{Name: "QDateTime", TargetType: "Date", Category: CategoryValue},

		{Name: "QVariant", TargetType: "any", Category: CategoryVariant},
		{Name: "QJsonValue", TargetType: "unknown", Category: CategoryVariant},
		{Name: "QJsonObject", TargetType: "Record<string, unknown>", Category: CategoryVariant},
		{Name: "QJsonArray", TargetType: "unknown[]", Category: CategoryVariant},
		{Name: "QJsonDocument", TargetType: "Record<string, unknown>", Category: CategoryVariant},
		{Name: "QVariantMap", TargetType: "Record<string, any>", Category: CategoryVariant},
		{Name: "QVariantList", TargetType: "any[]", Category: CategoryVariant},

		{Name: "QStringList", TargetType: "string[]", Category: CategoryContainer},
		{Name: "QList", TargetType: "any[]", Category: CategoryContainer},
		{Name: "QVector", TargetType: "any[]", Category: CategoryContainer},
		{Name: "QSet", TargetType: "any[]", Category: CategoryContainer},
		{Name: "QQueue", TargetType: "any[]", Category: CategoryContainer},
		{Name: "QStack", TargetType: "any[]", Category: CategoryContainer},
		{Name: "std::vector", TargetType: "any[]", Category: CategoryContainer},
		{Name: "QMap", TargetType: "Map<any, any>", Category: CategoryContainer},
		{Name: "QHash", TargetType: "Map<any, any>", Category: CategoryContainer},
		{Name: "std::map", TargetType: "Map<any, any>", Category: CategoryContainer},
		{Name: "QPair", TargetType: "[any, any]", Category: CategoryContainer,
			Aliases: []string{"std::pair"}},
	}
}

// defaultTemplateRules seeds the container substitutions that make the
// definitions above useful for instantiated generics. Mapping files replace
// these wholesale on load.
func defaultTemplateRules() []TemplateRule {
	return []TemplateRule{
		{Pattern: "^QList<(.+)>$", Replacement: "$1[]", Description: "Qt list"},
		{Pattern: "^QVector<(.+)>$", Replacement: "$1[]", Description: "Qt vector"},
		{Pattern: "^QSet<(.+)>$", Replacement: "$1[]", Description: "Qt set"},
		{Pattern: "^QQueue<(.+)>$", Replacement: "$1[]", Description: "Qt queue"},
		{Pattern: "^QStack<(.+)>$", Replacement: "$1[]", Description: "Qt stack"},
		{Pattern: "^std::vector<(.+)>$", Replacement: "$1[]", Description: "STL vector"},
		{Pattern: "^QMap<(.+), (.+)>$", Replacement: "Map<$1, $2>", Description: "Qt map"},
		{Pattern: "^QHash<(.+), (.+)>$", Replacement: "Map<$1, $2>", Description: "Qt hash"},
		{Pattern: "^std::map<(.+), (.+)>$", Replacement: "Map<$1, $2>", Description: "STL map"},
		{Pattern: "^QPair<(.+), (.+)>$", Replacement: "[$1, $2]", Description: "Qt pair"},
		{Pattern: "^std::pair<(.+), (.+)>$", Replacement: "[$1, $2]", Description: "STL pair"},
		{Pattern: "^QFuture<(.+)>$", Replacement: "Promise<$1>", Description: "Qt future"},
	}
}
