package analysis

import (
	"sort"
	"time"

	"github.com/dvloznov/budget-insight/internal/domain"
)

// VendorSpend is the aggregate spend at one vendor over the window.
type VendorSpend struct {
	Vendor  string  `json:"vendor"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// RecurringVendor is a vendor charged two or more times in the window.
// Subscription marks near-identical charge amounts, the signature of an
// automatic billing relationship rather than repeat shopping.
type RecurringVendor struct {
	Vendor       string  `json:"vendor"`
	Count        int     `json:"count"`
	Average      float64 `json:"average"`
	StdDev       float64 `json:"std_dev"`
	SpanDays     int     `json:"span_days"`
	Subscription bool    `json:"subscription"`
}

// VendorReport ranks where the money goes: the top vendors by total spend and
// every vendor with repeat charges.
type VendorReport struct {
	Status     DataStatus        `json:"status"`
	TopVendors []VendorSpend     `json:"top_vendors"`
	Recurring  []RecurringVendor `json:"recurring"`
}

// subscriptionStdDev is the absolute charge-amount deviation under which a
// recurring vendor is marked as a subscription.
const subscriptionStdDev = 5.0

// AnalyzeVendors aggregates expenses by description. Top vendors are capped
// at ten; recurring vendors are ordered by charge count, then total.
func AnalyzeVendors(txs []domain.Transaction) VendorReport {
	report := VendorReport{
		Status:     DataOK,
		TopVendors: []VendorSpend{},
		Recurring:  []RecurringVendor{},
	}

	type vendorAgg struct {
		amounts []float64
		total   float64
		first   time.Time
		last    time.Time
	}

	byVendor := make(map[string]*vendorAgg)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		agg := byVendor[tx.Description]
		if agg == nil {
			agg = &vendorAgg{first: tx.Day(), last: tx.Day()}
			byVendor[tx.Description] = agg
		}
		day := tx.Day()
		if day.Before(agg.first) {
			agg.first = day
		}
		if day.After(agg.last) {
			agg.last = day
		}
		agg.amounts = append(agg.amounts, tx.AbsAmount())
		agg.total += tx.AbsAmount()
	}

	if len(byVendor) == 0 {
		report.Status = DataNoData
		return report
	}

	for vendor, agg := range byVendor {
		report.TopVendors = append(report.TopVendors, VendorSpend{
			Vendor:  vendor,
			Total:   agg.total,
			Count:   len(agg.amounts),
			Average: agg.total / float64(len(agg.amounts)),
		})

		if len(agg.amounts) >= 2 {
			std := stdDev(agg.amounts)
			report.Recurring = append(report.Recurring, RecurringVendor{
				Vendor:       vendor,
				Count:        len(agg.amounts),
				Average:      agg.total / float64(len(agg.amounts)),
				StdDev:       std,
				SpanDays:     int(agg.last.Sub(agg.first).Hours() / 24),
				Subscription: std < subscriptionStdDev,
			})
		}
	}

	sort.Slice(report.TopVendors, func(i, j int) bool {
		if report.TopVendors[i].Total != report.TopVendors[j].Total {
			return report.TopVendors[i].Total > report.TopVendors[j].Total
		}
		return report.TopVendors[i].Vendor < report.TopVendors[j].Vendor
	})
	if len(report.TopVendors) > 10 {
		report.TopVendors = report.TopVendors[:10]
	}

	sort.Slice(report.Recurring, func(i, j int) bool {
		if report.Recurring[i].Count != report.Recurring[j].Count {
			return report.Recurring[i].Count > report.Recurring[j].Count
		}
		if report.Recurring[i].Total() != report.Recurring[j].Total() {
			return report.Recurring[i].Total() > report.Recurring[j].Total()
		}
		return report.Recurring[i].Vendor < report.Recurring[j].Vendor
	})

	return report
}

// Total reconstructs the vendor's window total from its average and count.
func (r RecurringVendor) Total() float64 {
	return r.Average * float64(r.Count)
}
