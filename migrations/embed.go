// migrations содержит goose-миграции схемы accounts-сервиса,
// встраиваемые в бинарь через embed.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
