package risk

import "sync"

// defaultFetchWorkers bounds the number of concurrent price history fetches
const defaultFetchWorkers = 4

// PriceHistoryProvider defines the contract for fetching daily close series
type PriceHistoryProvider interface {
	GetDailyCloses(symbol string, days int) ([]PricePoint, error)
}

// fetchResult is one holding's price history fetch, successful or not
type fetchResult struct {
	holding Holding
	points  []PricePoint
	err     error
}

// fetchAll fetches price history for every holding concurrently. Results
// land in index-keyed slots so the output order matches the input order
// regardless of which fetch finishes first.
func fetchAll(provider PriceHistoryProvider, holdings []Holding, days, workers int) []fetchResult {
	results := make([]fetchResult, len(holdings))
	if len(holdings) == 0 {
		return results
	}

	if workers <= 0 {
		workers = defaultFetchWorkers
	}
	if workers > len(holdings) {
		workers = len(holdings)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				points, err := provider.GetDailyCloses(holdings[i].Symbol, days)
				results[i] = fetchResult{holding: holdings[i], points: points, err: err}
			}
		}()
	}

	for i := range holdings {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
