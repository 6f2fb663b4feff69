// Package repository implements the remote-first, cache-fallback read path
// for every booking domain and the reservation write path.
//
// A read calls the remote source. An empty response is answered from the
// local store; a non-empty one replaces the local store wholesale and is
// then re-read from it. Any other failure, remote or local, resolves to a
// successful empty result. Context cancellation is the one exception: it is
// returned as an error and never folded into a result.
//
// Usage:
//
//	db, _ := store.OpenSQLite(path)
//	_ = store.AutoMigrate(db)
//	repo := repository.New(apiClient, repository.NewGormStores(db))
//
//	offers, err := repo.GetBestOffers(ctx)
//	if err != nil {
//	    return err // cancelled
//	}
//	for _, o := range offers.Value() {
//	    fmt.Println(o.Title)
//	}
package repository
