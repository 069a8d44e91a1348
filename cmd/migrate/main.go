package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/supabase-community/supabase-go"
)

// One-shot schema migration: adds the funerals.is_visible flag, its
// partial index, and the row level security policy that hides draft
// pages from anonymous readers. Safe to run repeatedly.
func main() {
	var dryRun bool
	flag.BoolVar(&dryRun, "dry-run", false, "Print statements without executing them")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or could not be loaded: %v", err)
	}

	url := os.Getenv("SUPABASE_URL")
	serviceKey := os.Getenv("SUPABASE_SERVICE_KEY")
	if url == "" || serviceKey == "" {
		log.Fatal("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
	}

	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		log.Fatalf("failed to create supabase client: %v", err)
	}

	// Rpc reports failures through an empty response; the server logs
	// carry the detail.
	exec := func(stmt string) error {
		if dryRun {
			log.Printf("dry-run: %s", stmt)
			return nil
		}
		if resp := client.Rpc("exec_sql", "", map[string]interface{}{"sql": stmt}); resp == "" {
			return fmt.Errorf("statement failed: %s", stmt)
		}
		return nil
	}

	log.Println("probing funerals.is_visible...")
	probe := client.Rpc("exec_sql", "", map[string]interface{}{
		"sql": `SELECT count(*) FROM information_schema.columns
		        WHERE table_name = 'funerals' AND column_name = 'is_visible'`,
	})
	if probe == "" {
		log.Fatal("probe failed: empty response from exec_sql")
	}

	missing, err := columnMissing(probe)
	if err != nil {
		log.Fatalf("probe returned malformed response %q: %v", probe, err)
	}

	if missing {
		log.Println("adding funerals.is_visible column...")
		if err := exec(`ALTER TABLE funerals ADD COLUMN is_visible boolean NOT NULL DEFAULT true`); err != nil {
			log.Fatalf("adding column failed: %v", err)
		}
	} else {
		log.Println("column already present, skipping")
	}

	log.Println("ensuring visibility index...")
	if err := exec(`CREATE INDEX IF NOT EXISTS idx_funerals_visible
	                ON funerals (created_at DESC) WHERE is_visible`); err != nil {
		log.Fatalf("creating index failed: %v", err)
	}

	log.Println("ensuring row level security policy...")
	if err := exec(`DROP POLICY IF EXISTS funerals_public_read ON funerals`); err != nil {
		log.Fatalf("dropping old policy failed: %v", err)
	}
	if err := exec(`CREATE POLICY funerals_public_read ON funerals
	                FOR SELECT TO anon USING (is_visible)`); err != nil {
		log.Fatalf("creating policy failed: %v", err)
	}

	log.Println("migration completed successfully")
}

// columnMissing decodes the information_schema count probe. The RPC
// returns the row set as JSON, so the count is parsed rather than
// pattern-matched out of the response text.
func columnMissing(probe string) (bool, error) {
	var rows []struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(probe), &rows); err != nil {
		return false, err
	}
	if len(rows) != 1 {
		return false, fmt.Errorf("expected one probe row, got %d", len(rows))
	}
	return rows[0].Count == 0, nil
}
