// Package browser provides the page automation capability the crawler
// drives: navigate to a URL, locate elements by CSS selector, read text and
// attributes, scroll, click and select.
//
// # Implementations
//
//   - RodSession drives a real Chrome or Chromium instance over the DevTools
//     protocol using go-rod. Scripts run, so lazily loaded listings grow as
//     they are scrolled.
//   - StaticSession fetches pages over plain HTTP and queries them with
//     goquery. No scripts run: scrolling and clicking do nothing and element
//     heights never change.
//
// Both implement Session, so the crawler does not know which one it drives.
//
// # Lookups
//
// Find fails with ErrNotFound when nothing matches. Lookup is the optional
// variant: it reports found=false without an error. Queries do not wait for
// elements to appear; callers sleep explicitly before querying.
//
// # Usage
//
//	session, err := browser.NewRodSession(ctx, browser.RodOptions{Headless: true})
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	if err := session.Navigate(ctx, "https://www.ecb.europa.eu/"); err != nil {
//		return err
//	}
//	title, err := session.Find(ctx, "h1")
package browser
