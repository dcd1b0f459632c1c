// Package pdf implementa o relatório de fechamento de sessão de caixa.
//
// Layout da página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nome da loja  │  Sessão + Operador + Período       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Hora | Tipo | Descrição | Valor | Saldo            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONFERÊNCIA: Fundo de troco / Esperado / Contado / Quebra  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/application/caixa"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// ── Paleta de cores ───────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var _ caixa.ReportGenerator = (*SessionReportGenerator)(nil)

// SessionReportGenerator implementa caixa.ReportGenerator usando Maroto v2.
type SessionReportGenerator struct {
	storeName string
}

// NewSessionReportGenerator constrói o gerador com o nome da loja no cabeçalho.
func NewSessionReportGenerator(storeName string) *SessionReportGenerator {
	return &SessionReportGenerator{storeName: storeName}
}

// GenerateSessionReport gera o PDF de fechamento e devolve seus bytes.
// movements chega do mais recente para o mais antigo; o relatório imprime
// em ordem cronológica.
func (g *SessionReportGenerator) GenerateSessionReport(
	_ context.Context,
	sess *entity.CashSession,
	movements []*entity.Movement,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Fechamento de Caixa", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName, sess))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for i := len(movements) - 1; i >= 0; i-- {
		m.AddRows(movementRow(movements[i]))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(conferenceRow(sess))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

// headerRow: loja (esq) e sessão + operador + período (dir).
func headerRow(storeName string, sess *entity.CashSession) core.Row {
	periodo := sess.OpenedAt.Format("02/01/2006 15:04")
	if sess.ClosedAt != nil {
		periodo += " — " + sess.ClosedAt.Format("02/01/2006 15:04")
	}

	return row.New(18).Add(
		col.New(6).Add(
			text.New(storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("FECHAMENTO DE CAIXA", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New("Sessão "+sess.ID, props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New("Operador: "+sess.OwnerName, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 6,
			}),
			text.New(periodo, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabeçalho da tabela de movimentos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Hora", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Descrição", 4, align.Left),
		h("Valor", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

// movementRow: uma linha por movimento; sangria sai em vermelho.
func movementRow(mov *entity.Movement) core.Row {
	valueColor := colorGray
	delta := mov.Delta()
	if delta.IsNegative() {
		valueColor = colorRed
	}
	return row.New(7).Add(
		col.New(2).Add(text.New(
			mov.CreatedAt.Format("02/01 15:04:05"),
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(2).Add(text.New(
			mov.Kind,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(4).Add(text.New(
			mov.Reason,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1, Color: colorGray},
		)),
		col.New(2).Add(text.New(
			formatAmount(delta),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: valueColor},
		)),
		col.New(2).Add(text.New(
			"R$ "+mov.NewBalance.StringFixed(2),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

// conferenceRow: bloco de conferência do fechamento.
func conferenceRow(sess *entity.CashSession) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	diffColor := colorPrimary
	if sess.Difference.IsNegative() {
		diffColor = colorRed
	}

	return row.New(30).Add(
		col.New(4),
		col.New(4).Add(
			label("Fundo de troco:"),
			label("Valor esperado:"),
			label("Valor contado:"),
			text.New("QUEBRA DE CAIXA:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: diffColor, Right: 2, Top: 21,
			}),
		),
		col.New(4).Add(
			value("R$ "+sess.OpeningAmount.StringFixed(2)),
			value("R$ "+sess.ExpectedAmount.StringFixed(2)),
			value("R$ "+sess.ClosingAmount.StringFixed(2)),
			text.New(formatAmount(sess.Difference), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: diffColor, Right: 1, Top: 21,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatAmount imprime o valor com sinal explícito: "+R$ 50.00", "-R$ 20.00".
func formatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-R$ " + d.Abs().StringFixed(2)
	}
	return "+R$ " + d.StringFixed(2)
}
