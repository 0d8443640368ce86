package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_survey.sql
var createSurveySQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createSurveySQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS question_answers;
				DROP TABLE IF EXISTS survey_responses;
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS survey_templates;
				DROP TABLE IF EXISTS accounts`)
			return err
		},
	)
}
