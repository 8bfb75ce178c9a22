package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/TobiSchelling/legisync/internal/database"
)

// billStatusURL builds the bulk-data location of a bill's status
// document, e.g. <root>/119/hr/BILLSTATUS-119hr1234.xml.
func billStatusURL(root string, bill *database.Bill) (string, error) {
	if bill.BillType == nil {
		return "", fmt.Errorf("bill %s has no type", bill.OfficialNumber)
	}
	billType := strings.ToLower(*bill.BillType)
	number := strings.TrimPrefix(strings.ToLower(bill.OfficialNumber), billType)
	if number == "" || number == strings.ToLower(bill.OfficialNumber) {
		return "", fmt.Errorf("cannot derive bill number from %s", bill.OfficialNumber)
	}
	return fmt.Sprintf("%s/%d/%s/BILLSTATUS-%d%s%s.xml",
		root, bill.Congress, billType, bill.Congress, billType, number), nil
}

// fetchBillStatus retrieves one bill's status document. A missing or
// unreachable document is a per-record condition, reported as a nil
// payload; only context cancellation aborts the calling job.
func fetchBillStatus(ctx context.Context, f Fetcher, root string, bill *database.Bill) ([]byte, error) {
	url, err := billStatusURL(root, bill)
	if err != nil {
		return nil, nil
	}
	body, err := f.Get(ctx, url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	return body, nil
}
