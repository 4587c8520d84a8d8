package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// fixtures is the on-disk shape of fixtures.yaml — plain data, no generated ids. Ids,
// timestamps and pipeline state are assigned when the fixtures are inserted below.
type fixtures struct {
	Positions []struct {
		Title        string `yaml:"title"`
		Description  string `yaml:"description"`
		Criteria     string `yaml:"criteria"`
		SystemPrompt string `yaml:"system_prompt"`
		FirstMessage string `yaml:"first_message"`
		CallStart    int    `yaml:"call_start"`
		CallEnd      int    `yaml:"call_end"`
	} `yaml:"positions"`
	Candidates []struct {
		First    string  `yaml:"first"`
		Last     string  `yaml:"last"`
		Phone    string  `yaml:"phone"`
		Email    string  `yaml:"email"`
		WhatsApp *string `yaml:"whatsapp"`
	} `yaml:"candidates"`
}

func loadFixtures() fixtures {
	var f fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		log.Fatalf("parse fixtures.yaml: %v", err)
	}
	return f
}

// ── helpers ──────────────────────────────────────────────────────────────────

func newID() string { return uuid.New().String() }

func hashPassword(pw string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), 12)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func daysAgo(d int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -d)
}

func hoursAgo(h int) time.Time {
	return time.Now().UTC().Add(-time.Duration(h) * time.Hour)
}

func randBetween(min, max int) int {
	return min + rand.Intn(max-min+1)
}

// ── main ─────────────────────────────────────────────────────────────────────

func main() {
	_ = godotenv.Load()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "recruitflow"),
		envOr("DB_PASSWORD", "recruitflow"),
		envOr("DB_NAME", "recruitflow"),
		envOr("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	fmt.Println("connected to database")

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	// ── clean up previous seed data ──────────────────────────────────────
	const seedEmail = "recruiter@recruitflow.dev"
	const seedCandidateDomain = "%@seed.recruitflow.dev"
	_, _ = tx.Exec(ctx, `DELETE FROM users WHERE email = $1`, seedEmail)
	_, _ = tx.Exec(ctx, `DELETE FROM candidates WHERE email LIKE $1`, seedCandidateDomain)
	fmt.Println("cleaned previous seed data")

	// ── 1. recruiter user ────────────────────────────────────────────────
	userID := newID()
	createdAt := daysAgo(90)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, locale, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		userID, seedEmail, "Ioana Popescu", hashPassword("password123"), "en", createdAt,
	)
	must(err, "create recruiter user")
	fmt.Printf("created user: %s / password123\n", seedEmail)

	fx := loadFixtures()

	// ── 2. positions ─────────────────────────────────────────────────────
	type positionDef struct {
		id, title, description, criteria, systemPrompt, firstMessage string
		callStart, callEnd                                           int
	}
	var positions []positionDef
	for _, p := range fx.Positions {
		positions = append(positions, positionDef{
			newID(), p.Title, p.Description, p.Criteria, p.SystemPrompt, p.FirstMessage,
			p.CallStart, p.CallEnd,
		})
	}
	for _, p := range positions {
		_, err = tx.Exec(ctx,
			`INSERT INTO positions (id, title, description, status, qualification_criteria,
				voice_agent_system_prompt, voice_agent_first_message, calling_hour_start, calling_hour_end,
				call_retry_max, call_retry_interval_minutes, follow_up_interval_hours, rejected_cv_timeout_days,
				created_at, updated_at)
			 VALUES ($1, $2, $3, 'OPEN', $4, $5, $6, $7, $8, 3, 60, 24, 14, $9, $9)`,
			p.id, p.title, p.description, p.criteria, p.systemPrompt, p.firstMessage,
			p.callStart, p.callEnd, daysAgo(85),
		)
		must(err, "create position "+p.title)
	}
	fmt.Printf("created %d positions\n", len(positions))

	// ── 3. candidates ────────────────────────────────────────────────────
	type candidateDef struct {
		id, first, last, phone, email string
		whatsapp                      *string
	}
	var candidates []candidateDef
	for _, c := range fx.Candidates {
		candidates = append(candidates, candidateDef{
			newID(), c.First, c.Last, c.Phone, c.Email, c.WhatsApp,
		})
	}
	for _, c := range candidates {
		full := c.first + " " + c.last
		_, err = tx.Exec(ctx,
			`INSERT INTO candidates (id, first_name, last_name, full_name, phone, email,
				whatsapp_number, lead_source_id, form_answers, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, NULL, $9, $9)`,
			c.id, c.first, c.last, full, c.phone, c.email, c.whatsapp,
			`{"years_experience": "5", "source": "careers_page"}`, daysAgo(randBetween(10, 60)),
		)
		must(err, "create candidate "+full)
	}
	fmt.Printf("created %d candidates\n", len(candidates))

	// ── 4. applications ──────────────────────────────────────────────────
	// Five applications, each parked at a different point of the pipeline.
	type appDef struct {
		candIdx, posIdx int
		status          string
		daysAgo         int
	}
	appDefs := []appDef{
		{0, 0, "qualified", 2},     // Maria -> Backend Engineer, just qualified, awaiting CV push
		{1, 0, "awaiting_cv", 3},   // David -> Backend Engineer, CV requested
		{2, 1, "cv_received", 6},   // Elena -> Support, sent CV already
		{3, 1, "not_qualified", 5}, // Tom -> Support, screened out
		{4, 0, "call_queued", 0},   // Ana -> Backend Engineer, not yet called
	}

	type appRecord struct {
		id              string
		referenceNumber int
		candIdx, posIdx int
	}
	var apps []appRecord

	for _, ad := range appDefs {
		appID := newID()
		createdAt := daysAgo(ad.daysAgo)
		var refNumber int
		err = tx.QueryRow(ctx,
			`INSERT INTO applications (id, candidate_id, position_id, status, qualified, score, score_notes,
				cv_received_at, callback_scheduled_at, needs_human_reason, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NULL, NULL, NULL, NULL, NULL, NULL, $5, $5)
			 RETURNING reference_number`,
			appID, candidates[ad.candIdx].id, positions[ad.posIdx].id, ad.status, createdAt,
		).Scan(&refNumber)
		must(err, "create application for "+candidates[ad.candIdx].first)
		apps = append(apps, appRecord{appID, refNumber, ad.candIdx, ad.posIdx})

		_, err = tx.Exec(ctx,
			`INSERT INTO status_changes (id, application_id, from_status, to_status, actor_id, note, changed_at)
			 VALUES ($1, $2, 'pending_call', 'call_queued', NULL, NULL, $3)`,
			newID(), appID, createdAt,
		)
		must(err, "seed initial status change")
	}
	fmt.Printf("created %d applications\n", len(apps))

	// ── 5. calls + evaluations for the applications that were actually screened ──
	// Maria: qualified call. David: qualified call. Elena: qualified call. Tom: not qualified.
	type callDef struct {
		appIdx  int
		outcome string
		score   int
		reason  string
	}
	callDefs := []callDef{
		{0, "qualified", 85, "Strong Go background, five years at a fintech, available immediately."},
		{1, "qualified", 78, "Solid distributed-systems experience, slightly light on SQL but eager to grow."},
		{2, "qualified", 72, "Two years of support experience, clear communicator, flexible on shifts."},
		{3, "not_qualified", 35, "No customer-facing experience and unavailable for evening shifts."},
	}
	for _, cd := range callDefs {
		app := apps[cd.appIdx]
		callID := newID()
		initiatedAt := daysAgo(appDefs[cd.appIdx].daysAgo).Add(2 * time.Hour)
		endedAt := initiatedAt.Add(6 * time.Minute)
		transcript := "Recruiter: Hi, thanks for taking the call...\nCandidate: Of course, happy to chat."

		_, err = tx.Exec(ctx,
			`INSERT INTO calls (id, application_id, attempt_number, status, external_conversation_id,
				external_batch_id, transcript, summary, summary_title, recording_url, duration_seconds,
				initiated_at, ended_at, created_at, updated_at)
			 VALUES ($1, $2, 1, 'COMPLETED', $3, NULL, $4, $5, 'Screening call', NULL, 360, $6, $7, $6, $7)`,
			callID, app.id, "conv_"+callID[:8], transcript, cd.reason, initiatedAt, endedAt,
		)
		must(err, "create call")

		qualified := cd.outcome == "qualified"
		_, err = tx.Exec(ctx,
			`INSERT INTO evaluations (id, application_id, call_id, outcome, qualified, score, reasoning,
				criteria, disqualifying_factor, callback_requested, callback_notes, callback_at,
				needs_human, needs_human_notes, raw_response, evaluated_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, false, NULL, NULL, false, NULL, $9, $10, $10)`,
			newID(), app.id, callID, cd.outcome, qualified, cd.score, cd.reason,
			`[{"name":"technical_fit","passed":true,"note":"meets the bar"}]`, "{}", endedAt,
		)
		must(err, "create evaluation")
	}
	fmt.Printf("created %d calls with evaluations\n", len(callDefs))

	// ── 6. messages (CV request sent to the first two applications) ──
	type messageDef struct {
		appIdx  int
		msgType string
		body    string
	}
	messageDefs := []messageDef{
		{0, "cv_request", "Hi Maria, thanks for the call about Backend Engineer! Please reply with your CV."},
		{1, "cv_request", "Hi David, thanks for the call about Backend Engineer! Please reply with your CV."},
	}
	for _, md := range messageDefs {
		app := apps[md.appIdx]
		_, err = tx.Exec(ctx,
			`INSERT INTO messages (id, application_id, channel, type, recipient, subject, body, status, error, sent_at)
			 VALUES ($1, $2, 'email', $3, $4, 'Your CV for Backend Engineer', $5, 'sent', NULL, $6)`,
			newID(), app.id, md.msgType, candidates[apps[md.appIdx].candIdx].email, md.body, hoursAgo(randBetween(6, 48)),
		)
		must(err, "create message")
	}
	fmt.Printf("created %d messages\n", len(messageDefs))

	// ── 7. a CV upload for the candidate who already sent theirs back ───────
	elenaApp := apps[2]
	_, err = tx.Exec(ctx,
		`INSERT INTO cv_uploads (id, application_id, file_name, file_path, source, match_method, needs_review, received_at)
		 VALUES ($1, $2, 'elena_vasilescu_cv.pdf', 'cv-uploads/elena_vasilescu_cv.pdf', 'email_attachment', 'exact_email', false, $3)`,
		newID(), elenaApp.id, hoursAgo(20),
	)
	must(err, "create cv upload")
	fmt.Println("created 1 cv upload")

	// ── commit ───────────────────────────────────────────────────────────
	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Println("\nseed completed successfully")
	fmt.Printf("  login: %s / password123\n", seedEmail)
}

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
