package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/sgexamenes/examenes-api/config"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
)

// Seeds a local database with an approved administrator, the base question
// categories and one published demo exam.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	correo := "admin@examenes.local"
	password := "admin12345"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var idAdmin string
	err = db.QueryRow(`
		INSERT INTO usuarios (nombre, apellidos, correo, password, rol, estado)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (correo) DO UPDATE SET estado = EXCLUDED.estado, updated_at = now()
		RETURNING id_usuario
	`, "Admina", "Istradora", correo, hash, string(entity.RolAdministrador), string(entity.EstadoActivo)).Scan(&idAdmin)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s correo=%s password=%s\n", idAdmin, correo, password)

	for _, nombre := range []string{"Razonamiento Verbal", "Razonamiento Matemático", "Conocimientos Pedagógicos"} {
		if _, err := db.Exec(`
			INSERT INTO categorias (nombre) VALUES ($1)
			ON CONFLICT (nombre) DO NOTHING
		`, nombre); err != nil {
			log.Fatalf("failed to seed categoria %q: %v", nombre, err)
		}
	}
	fmt.Println("seeded base categorias")

	var idExamen string
	err = db.QueryRow(`
		INSERT INTO examenes (titulo, descripcion, estado, duracion_min, creado_por)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_examen
	`, "Examen de demostración", "Examen de ejemplo para entornos locales", string(entity.ExamenPublicado), 120, idAdmin).Scan(&idExamen)
	if err != nil {
		log.Fatalf("failed to seed examen: %v", err)
	}

	var idSub string
	err = db.QueryRow(`
		INSERT INTO subpruebas (id_examen, nombre, orden, num_preguntas, puntaje_max)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_subprueba
	`, idExamen, "Aptitud general", 1, 50, 100.0).Scan(&idSub)
	if err != nil {
		log.Fatalf("failed to seed subprueba: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO postulaciones (id_examen, nombre, nota_minima, min_subprueba, subpruebas)
		VALUES ($1, $2, $3, $4, '[]'::jsonb)
	`, idExamen, "Postulación general", 55.0, 0.0); err != nil {
		log.Fatalf("failed to seed postulacion: %v", err)
	}

	fmt.Printf("seeded demo examen: id=%s subprueba=%s\n", idExamen, idSub)
}
