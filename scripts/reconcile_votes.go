package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Recounts topics.vote_count from the votes table. The application keeps the
// counter in the same transaction as the vote rows, so drift only appears
// after manual data surgery; this script is the cleanup tool for that case.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	result, err := db.Exec(`
		UPDATE topics
		SET vote_count = counted.n
		FROM (
			SELECT t.id, COALESCE(COUNT(v.id), 0) AS n
			FROM topics t
			LEFT JOIN votes v ON v.topic_id = t.id
			GROUP BY t.id
		) AS counted
		WHERE topics.id = counted.id
		  AND topics.vote_count != counted.n
	`)
	if err != nil {
		log.Fatalf("Failed to reconcile vote counts: %v", err)
	}

	rows, _ := result.RowsAffected()
	log.Printf("Reconciled vote_count on %d topics", rows)
}
