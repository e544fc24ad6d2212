package httpx

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/reisemkt/dashboard-api/internal/models"
)

// Column order and formatting are a fixed contract with the spreadsheet
// consumers of this export: semicolon separated, comma as decimal mark,
// ratio cells blank when the denominator is zero.
var dailyCsvHeaders = []string{
	"Data",
	"Receita Faturada",
	"Meta do dia",
	"Sessões",
	"Pedidos aprovados",
	"Ticket médio",
	"Taxa de conversão",
	"CPS",
	"Clientes novos",
	"Clientes recorrentes",
	"Investimento total (estimado)",
	"CAC (clientes novos)",
	"% custo MKT",
}

// WriteDailyCsv renders the filtered daily rows in the export contract.
func WriteDailyCsv(w io.Writer, rows []models.DailyRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(dailyCsvHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		spend := r.Spend
		recurring := r.Orders - r.NewCustomers
		if recurring < 0 {
			recurring = 0
		}

		var ticket, conv, cps, cac, mktPct float64
		if r.Orders > 0 {
			ticket = r.Revenue / float64(r.Orders)
		}
		if r.Sessions > 0 {
			conv = float64(r.Orders) / float64(r.Sessions)
			cps = spend / float64(r.Sessions)
		}
		if r.NewCustomers > 0 {
			cac = spend / float64(r.NewCustomers)
		}
		if r.Revenue > 0 {
			mktPct = spend / r.Revenue
		}

		rec := []string{
			r.Date.Format("02/01/2006"),
			commaDecimal(r.Revenue, 2),
			commaDecimal(r.DailyGoal, 2),
			strconv.Itoa(r.Sessions),
			strconv.Itoa(r.Orders),
			blankIfZero(ticket, 2),
			commaDecimal(conv*100, 2),
			blankIfZero(cps, 2),
			strconv.Itoa(r.NewCustomers),
			strconv.Itoa(recurring),
			blankIfZero(spend, 2),
			blankIfZero(cac, 2),
			commaDecimal(mktPct*100, 1),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func commaDecimal(v float64, decimals int) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', decimals, 64), ".", ",", 1)
}

func blankIfZero(v float64, decimals int) string {
	if v == 0 {
		return ""
	}
	return commaDecimal(v, decimals)
}
