package protect

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeEncrypter struct {
	err   error
	creds Credentials
	in    string
	out   string
}

func (f *fakeEncrypter) Encrypt(inFile, outFile string, c Credentials) error {
	f.in, f.out, f.creds = inFile, outFile, c
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(inFile)
	if err != nil {
		return err
	}
	return os.WriteFile(outFile, append([]byte("ENC:"), data...), 0o600)
}

type panicEncrypter struct{}

func (panicEncrypter) Encrypt(string, string, Credentials) error { panic("boom") }

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}

func TestProtect_Disabled(t *testing.T) {
	enc := &fakeEncrypter{}
	p := New(Options{Enabled: false, Policy: DefaultPolicy()}, enc, zaptest.NewLogger(t), nil)

	res := p.Protect(context.Background(), []byte("%PDF-1.4"), "12345678")

	assert.False(t, res.Applied)
	assert.Nil(t, res.Password)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Equal(t, []byte("%PDF-1.4"), res.Data)
	assert.Empty(t, enc.in)
}

func TestProtect_SkipsWithoutNationalID(t *testing.T) {
	p := New(Options{Enabled: true}, &fakeEncrypter{}, zaptest.NewLogger(t), nil)

	res := p.Protect(context.Background(), []byte("x"), "")
	assert.False(t, res.Applied)
	assert.Nil(t, res.Password)
	assert.False(t, p.WillAttempt(""))
	assert.True(t, p.WillAttempt("1"))
}

func TestProtect_SkipsWithoutEncrypter(t *testing.T) {
	p := New(Options{Enabled: true}, nil, nil, nil)
	res := p.Protect(context.Background(), []byte("x"), "12345678")
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.False(t, p.WillAttempt("12345678"))
}

func TestProtect_AppliesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	enc := &fakeEncrypter{}
	p := New(Options{Enabled: true, Policy: DefaultPolicy(), TempDir: dir}, enc, zaptest.NewLogger(t), nil)

	res := p.Protect(context.Background(), []byte("%PDF"), "12345678")

	require.True(t, res.Applied)
	require.NotNil(t, res.Password)
	assert.Equal(t, "12345678", *res.Password)
	assert.Equal(t, []byte("ENC:%PDF"), res.Data)
	assert.Equal(t, OutcomeApplied, res.Outcome)

	assert.Equal(t, "12345678", enc.creds.User)
	assert.Equal(t, "12345678", enc.creds.Owner)
	assert.Equal(t, PermPrint|PermPrintHigh, enc.creds.Permissions)
	assert.Contains(t, enc.in, "decl-src-")
	assert.Contains(t, enc.out, "decl-out-")
	assert.NotEqual(t, enc.in, enc.out)

	assertEmptyDir(t, dir)
}

func TestProtect_OwnerPassword(t *testing.T) {
	enc := &fakeEncrypter{}
	p := New(Options{Enabled: true, OwnerPassword: "owner-secret", TempDir: t.TempDir()}, enc, nil, nil)

	p.Protect(context.Background(), []byte("%PDF"), "12345678")
	assert.Equal(t, "owner-secret", enc.creds.Owner)
	assert.Equal(t, "12345678", enc.creds.User)
}

func TestProtect_FallsBackOnFailure(t *testing.T) {
	dir := t.TempDir()
	enc := &fakeEncrypter{err: errors.New("malformed pdf")}
	p := New(Options{Enabled: true, TempDir: dir}, enc, zaptest.NewLogger(t), nil)

	res := p.Protect(context.Background(), []byte("%PDF"), "12345678")

	assert.False(t, res.Applied)
	assert.Nil(t, res.Password)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, []byte("%PDF"), res.Data)
	assertEmptyDir(t, dir)
}

func TestProtect_RecoversFromPanic(t *testing.T) {
	dir := t.TempDir()
	p := New(Options{Enabled: true, TempDir: dir}, panicEncrypter{}, zaptest.NewLogger(t), nil)

	res := p.Protect(context.Background(), []byte("%PDF"), "12345678")

	assert.False(t, res.Applied)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, []byte("%PDF"), res.Data)
	assertEmptyDir(t, dir)
}

func TestProtect_MissingTempDirFails(t *testing.T) {
	p := New(Options{Enabled: true, TempDir: "/nonexistent/dails"}, &fakeEncrypter{}, nil, nil)
	res := p.Protect(context.Background(), []byte("%PDF"), "12345678")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, []byte("%PDF"), res.Data)
}

func TestProtect_PDFCPU(t *testing.T) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(100, 20, "Declaration")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	plain := buf.Bytes()

	dir := t.TempDir()
	p := New(Options{Enabled: true, Policy: DefaultPolicy(), TempDir: dir}, NewPDFCPU(), zaptest.NewLogger(t), nil)

	res := p.Protect(context.Background(), plain, "12345678")

	require.True(t, res.Applied)
	require.NotNil(t, res.Password)
	assert.Equal(t, "12345678", *res.Password)
	assert.NotEqual(t, plain, res.Data)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("%PDF")))
	assert.True(t, bytes.Contains(res.Data, []byte("/Encrypt")))
	assertEmptyDir(t, dir)
}
