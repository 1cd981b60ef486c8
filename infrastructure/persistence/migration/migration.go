package migration

import (
	"log"

	"github.com/banterhq/banter/domain/model"
	"gorm.io/gorm"
)

// Up creates any missing tables. The memberships composite primary key is the
// uniqueness constraint that serializes concurrent first joins.
func Up(db *gorm.DB) error {
	tables := []any{}

	tables = addNewTable(db, model.Identity{}, tables)
	tables = addNewTable(db, model.Credential{}, tables)
	tables = addNewTable(db, model.Room{}, tables)
	tables = addNewTable(db, model.Membership{}, tables)
	tables = addNewTable(db, model.Message{}, tables)

	if len(tables) == 0 {
		return nil
	}

	if err := db.Migrator().CreateTable(tables...); err != nil {
		return err
	}
	log.Println("Tables created")
	return nil
}

func addNewTable(db *gorm.DB, model any, tables []any) []any {
	if !db.Migrator().HasTable(model) {
		tables = append(tables, model)
	}
	return tables
}
