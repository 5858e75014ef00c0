package extract

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// alternativeSeparator joins the two backend texts when neither one is
// clearly richer than the other.
const alternativeSeparator = "\n\n--- ALTERNATIVE EXTRACTION ---\n\n"

// Adapter runs two independent extraction backends against the same document
// and reconciles their outputs into one Bundle.
type Adapter struct {
	first  Backend
	second Backend
	log    *slog.Logger
}

func NewAdapter(first, second Backend, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{first: first, second: second, log: log}
}

// Extract fans text and table extraction out across both backends. A failing
// backend call is logged and recorded in Bundle.Degraded, never escalated;
// with every call failed the bundle is simply empty and the confidence
// pipeline scores the degradation. The only hard error is a dead context.
func (a *Adapter) Extract(ctx context.Context, path string) (Bundle, error) {
	var (
		textA, textB                   string
		tablesA, tablesB               []Table
		errTA, errTB, errTabA, errTabB error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		textA, errTA = a.first.ExtractText(gctx, path)
		return nil
	})
	g.Go(func() error {
		textB, errTB = a.second.ExtractText(gctx, path)
		return nil
	})
	g.Go(func() error {
		tablesA, errTabA = a.first.ExtractTables(gctx, path)
		return nil
	})
	g.Go(func() error {
		tablesB, errTabB = a.second.ExtractTables(gctx, path)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}

	var degraded []string
	record := func(name, stage string, err error) {
		if err == nil {
			return
		}
		a.log.Warn("extract.backend.degraded", "backend", name, "stage", stage, "error", err)
		degraded = append(degraded, name+"/"+stage)
	}
	record(a.first.Name(), "text", errTA)
	record(a.second.Name(), "text", errTB)
	record(a.first.Name(), "tables", errTabA)
	record(a.second.Name(), "tables", errTabB)

	primary, method := a.reconcile(textA, textB)
	tables := ScoreTables(append(tablesA, tablesB...))

	combined := primary
	if block := RenderTables(tables); block != "" {
		combined += block
	}

	a.log.Info("extract.done",
		"path", path,
		"method", method,
		"text_len", len(combined),
		"tables", len(tables),
		"degraded", len(degraded),
	)
	return Bundle{
		CombinedText: combined,
		TextA:        textA,
		TextB:        textB,
		Tables:       tables,
		Degraded:     degraded,
		Method:       method,
	}, nil
}

// reconcile picks the primary text. A text more than 20% longer than the
// other wins outright; otherwise both are kept, joined by a marked separator
// so neither backend's view is lost.
func (a *Adapter) reconcile(textA, textB string) (string, string) {
	ta := strings.TrimSpace(textA)
	tb := strings.TrimSpace(textB)
	switch {
	case ta == "" && tb == "":
		return "", "none"
	case tb == "":
		return ta, a.first.Name()
	case ta == "":
		return tb, a.second.Name()
	case float64(len(ta)) > float64(len(tb))*1.2:
		return ta, a.first.Name()
	case float64(len(tb)) > float64(len(ta))*1.2:
		return tb, a.second.Name()
	default:
		return ta + alternativeSeparator + tb, "combined"
	}
}
