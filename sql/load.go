package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed review_chunks.sql
var reviewChunksSQL string

// Function list for verification
var ReviewChunksFunctions = []string{
	"init_review_chunks",
	"insert_review_chunk",
	"select_review_chunks_by_similarity",
	"count_review_chunks",
	"clear_review_chunks",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadReviewChunksSql loads review chunk related SQL functions
func LoadReviewChunksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ReviewChunksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing review chunks functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(reviewChunksSQL)
	if err != nil {
		return fmt.Errorf("error executing review chunks SQL: %w", err)
	}

	exist, err := checkFunctions(db, ReviewChunksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL review chunks functions loaded successfully")
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
