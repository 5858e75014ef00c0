package extract

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fakeRunner stubs the external pdftotext invocation.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f.run(ctx, name, args...)
}

// TestPopplerExtractText checks the pdftotext invocation and per-page
// normalization with form feeds as page breaks.
func TestPopplerExtractText(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := &fakeRunner{run: func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotName = name
		gotArgs = args
		return []byte("ACORD   25\nCert No:  ABC-123456\f\n\nPage   two\f"), nil, nil
	}}

	b := NewPopplerBackend("", runner, nil)
	got, err := b.ExtractText(context.Background(), "in.pdf")
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	if gotName != "pdftotext" {
		t.Errorf("command = %q, want pdftotext", gotName)
	}
	wantArgs := []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "in.pdf", "-"}
	if !reflect.DeepEqual(gotArgs, wantArgs) {
		t.Errorf("args = %v, want %v", gotArgs, wantArgs)
	}
	want := "ACORD 25 Cert No ABC-123456\nPage two\n"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

// TestPopplerExtractTextError checks that a failed invocation surfaces the
// stderr content instead of partial text.
func TestPopplerExtractTextError(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context, string, ...string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: broken xref"), errors.New("exit status 1")
	}}

	b := NewPopplerBackend("pdftotext", runner, nil)
	_, err := b.ExtractText(context.Background(), "bad.pdf")
	if err == nil {
		t.Fatal("ExtractText() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "broken xref") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

// TestPopplerExtractTables checks that aligned column runs become tables and
// prose lines break them.
func TestPopplerExtractTables(t *testing.T) {
	page := strings.Join([]string{
		"CERTIFICATE OF LIABILITY INSURANCE",
		"POLICY TYPE          POLICY NUMBER      EFF DATE",
		"General Liability    GL-123456          2024-01-01",
		"Workers Comp         WC-789012          2024-02-01",
		"This prose line has no column alignment at all.",
		"Holder               City of Springfield",
	}, "\n")
	runner := &fakeRunner{run: func(context.Context, string, ...string) ([]byte, []byte, error) {
		return []byte(page), nil, nil
	}}

	b := NewPopplerBackend("", runner, nil)
	got, err := b.ExtractTables(context.Background(), "in.pdf")
	if err != nil {
		t.Fatalf("ExtractTables() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("tables = %d, want 1 (single-row holder run must be dropped)", len(got))
	}
	tab := got[0]
	if tab.Page != 1 || tab.Source != popplerName {
		t.Errorf("table meta = page %d source %q", tab.Page, tab.Source)
	}
	if len(tab.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tab.Rows))
	}
	wantHeader := []string{"POLICY TYPE", "POLICY NUMBER", "EFF DATE"}
	if !reflect.DeepEqual(tab.Rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", tab.Rows[0], wantHeader)
	}
	if tab.Rows[1][1] != "GL-123456" {
		t.Errorf("cell = %q, want GL-123456", tab.Rows[1][1])
	}
}
