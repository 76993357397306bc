package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parisxmas/OxiDB/qrform/internal/auth"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestHashPasswordCommand(t *testing.T) {
	out := strings.TrimSpace(run(t, "hash-password", "s3cret"))
	if !auth.CheckPassword("s3cret", out) {
		t.Fatalf("printed hash does not verify: %q", out)
	}
}

func TestQRCodeCommand(t *testing.T) {
	t.Setenv("BASE_URL", "http://forms.example.test")

	out := run(t, "qrcode")
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Fatalf("expected data uri, got %.40q", out)
	}

	path := filepath.Join(t.TempDir(), "form.png")
	out = run(t, "qrcode", "https://example.test/x", "-o", path)
	if !strings.Contains(out, "https://example.test/x") {
		t.Fatalf("unexpected output %q", out)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Fatal("output is not a PNG")
	}
	qrcodeOutput = ""
}
