package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/repository"
)

// StaticTranscriber returns the same transcript for every file.
type StaticTranscriber struct {
	Text string
}

func (t *StaticTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return t.Text, nil
}

// FailingTranscriber fails every transcription with Err.
type FailingTranscriber struct {
	Err error
}

func (t *FailingTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return "", t.Err
}

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email       string
	password    string
	firstName   string
	lastName    string
	accountType domain.AccountType
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:       fmt.Sprintf("test_%s@example.com", uuid.New().String()[:8]),
		password:    "testpassword123",
		firstName:   "Test",
		lastName:    "User",
		accountType: domain.AccountTypePatient,
	}
}

// WithEmail sets the email address
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithAccountType sets the account type
func (b *UserBuilder) WithAccountType(t domain.AccountType) *UserBuilder {
	b.accountType = t
	return b
}

// Build creates the user in the store and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, repos *repository.Repositories) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		FirstName:    b.firstName,
		LastName:     b.lastName,
		AccountType:  b.accountType,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"email":       b.email,
		"password":    b.password,
		"firstName":   b.firstName,
		"lastName":    b.lastName,
		"accountType": string(b.accountType),
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return authResp.User, authResp.AccessToken
}

// CreateAudioFile stores a small audio file for the user: bytes in the
// filestore, metadata in the repository.
func CreateAudioFile(t *testing.T, ts *TestServer, userID uuid.UUID) *domain.AudioFile {
	t.Helper()

	content := []byte("RIFF....WAVEfmt test audio bytes")
	filename, path, size, err := ts.Files.Save(bytes.NewReader(content), "recording.wav")
	if err != nil {
		t.Fatalf("failed to save audio bytes: %v", err)
	}

	duration := 30.0
	file := &domain.AudioFile{
		ID:           uuid.New(),
		UserID:       userID,
		Filename:     filename,
		OriginalName: "recording.wav",
		FilePath:     path,
		FileSize:     size,
		MimeType:     "audio/wav",
		Duration:     &duration,
		CreatedAt:    time.Now(),
	}
	if err := ts.Repos.AudioFile.Create(context.Background(), file); err != nil {
		t.Fatalf("failed to create audio file: %v", err)
	}
	return file
}

// CreateCompletedAnalysis creates an analysis in the completed state with a
// plausible set of metrics.
func CreateCompletedAnalysis(t *testing.T, repos *repository.Repositories, userID, audioFileID uuid.UUID) *domain.SpeechAnalysis {
	t.Helper()

	ctx := context.Background()
	analysis := &domain.SpeechAnalysis{
		ID:          uuid.New(),
		UserID:      userID,
		AudioFileID: audioFileID,
		Status:      domain.AnalysisStatusProcessing,
		CreatedAt:   time.Now(),
	}
	if err := repos.Analysis.Create(ctx, analysis); err != nil {
		t.Fatalf("failed to create analysis: %v", err)
	}

	results := &domain.AnalysisResults{
		StutteringDetected:   true,
		StutteringPercentage: 12.5,
		TotalWords:           80,
		StutteredWords:       10,
		AveragePauseDuration: 0.4,
		SpeechRate:           160,
		FluencyScore:         7.5,
		Data:                 []byte(`{"stutter_events":[],"analysis_method":"mock_analyzer_v1.0"}`),
	}
	if err := repos.Analysis.Complete(ctx, analysis.ID, results); err != nil {
		t.Fatalf("failed to complete analysis: %v", err)
	}

	completed, err := repos.Analysis.GetByID(ctx, analysis.ID)
	if err != nil {
		t.Fatalf("failed to reload analysis: %v", err)
	}
	return completed
}

// WaitForAnalysisStatus polls until the analysis reaches the wanted status or
// the timeout elapses.
func WaitForAnalysisStatus(t *testing.T, repos *repository.Repositories, id uuid.UUID, want domain.AnalysisStatus, timeout time.Duration) *domain.SpeechAnalysis {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		analysis, err := repos.Analysis.GetByID(context.Background(), id)
		if err == nil && analysis.Status == want {
			return analysis
		}
		if time.Now().After(deadline) {
			status := domain.AnalysisStatus("missing")
			if analysis != nil {
				status = analysis.Status
			}
			t.Fatalf("analysis %s did not reach %s within %s (last status %s)", id, want, timeout, status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// DoRequest performs an authenticated JSON request against the test server.
// Pass an empty token for anonymous requests and nil body for bodiless ones.
func (ts *TestServer) DoRequest(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.APIURL(path), reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// UploadAudio uploads a multipart audio file through the API and returns the
// decoded response.
func (ts *TestServer) UploadAudio(t *testing.T, token, filename, mimeType string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write multipart content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/audio/upload"), &buf)
	if err != nil {
		t.Fatalf("failed to build upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	return resp
}
