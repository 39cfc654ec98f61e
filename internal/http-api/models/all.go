package models

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Category{},
		&Tag{},
		&Topic{},
		&TopicTag{},
		&Comment{},
		&Reaction{},
	}
}
