package parser

import (
	"github.com/baseradar/baseradar/internal/scanner"
)

var baseKeywords = []string{"base chain", "coinbase l2", "superchain", "base network", "base ecosystem"}

func feed(id, url string) (string, scanner.Factory) {
	return id, func(opts scanner.Options) scanner.Source {
		return NewFeedSource(id, FeedSpec{URL: url}, opts)
	}
}

func page(id string, spec PageSpec) (string, scanner.Factory) {
	return id, func(opts scanner.Options) scanner.Source {
		return NewPageSource(id, spec, opts)
	}
}

// RegisterPlatforms adds every built-in platform to reg.
func RegisterPlatforms(reg *scanner.Registry) {
	reg.Register(feed("coindesk", "https://www.coindesk.com/arc/outboundfeeds/rss/"))
	reg.Register("cointelegraph", func(opts scanner.Options) scanner.Source {
		return NewFeedSource("cointelegraph", FeedSpec{
			URL:      "https://cointelegraph.com/rss",
			Keywords: baseKeywords,
			Scan:     100,
		}, opts)
	})
	reg.Register(feed("decrypt", "https://decrypt.co/feed"))
	reg.Register(feed("beincrypto", "https://beincrypto.com/feed/"))
	reg.Register(feed("coingape", "https://coingape.com/feed/"))
	reg.Register(feed("cryptonews", "https://cryptonews.com/news/feed/"))
	reg.Register(feed("theblock", "https://www.theblock.co/rss.xml"))
	reg.Register(feed("coinpedia", "https://coinpedia.org/feed/"))
	reg.Register(feed("base-blog", "https://base.org/blog/feed"))

	reg.Register(page("mirror-xyz", PageSpec{
		URL:         "https://mirror.xyz",
		Containers:  "a[href]",
		Links:       true,
		Keywords:    []string{"base", "base chain", "coinbase l2", "superchain"},
		MinTitleLen: 10,
	}))

	reg.Register("base-mirror", func(opts scanner.Options) scanner.Source {
		return NewFallbackSource("base-mirror", opts,
			NewFeedSource("base-mirror", FeedSpec{URL: "https://base.mirror.xyz/feed"}, opts),
			NewPageSource("base-mirror", PageSpec{
				URL:           "https://base.mirror.xyz",
				Containers:    "article, div",
				ClassHints:    []string{"post", "article"},
				TitleSelector: "h1, h2, h3, a",
				Scan:          scanner.MaxItems,
			}, opts),
		)
	})

	reg.Register(page("defillama", PageSpec{
		URL:         "https://defillama.com/news",
		Containers:  "article, div",
		ClassHints:  []string{"news", "article", "post"},
		Keywords:    []string{"base", "base chain", "coinbase l2"},
		MinTitleLen: 10,
	}))

	reg.Register(page("messari", PageSpec{
		URL:           "https://messari.io/research",
		Containers:    "article, div, a",
		ClassHints:    []string{"research", "report", "article"},
		TitleSelector: "h1, h2, h3, h4",
		Keywords:      []string{"base", "base chain", "coinbase l2", "optimism"},
		MinTitleLen:   10,
	}))

	airdrops := PageSpec{
		Containers:  "div, article, li",
		ClassHints:  []string{"airdrop", "project"},
		Keywords:    []string{"base"},
		MinTitleLen: 5,
	}
	reg.Register("airdrops-io", func(opts scanner.Options) scanner.Source {
		chain, home := airdrops, airdrops
		chain.URL = "https://airdrops.io/?chain=base"
		home.URL = "https://airdrops.io"
		return NewFallbackSource("airdrops-io", opts,
			NewPageSource("airdrops-io", chain, opts),
			NewPageSource("airdrops-io", home, opts),
		)
	})

	reg.Register(page("cryptoslate", PageSpec{
		URL:         "https://cryptoslate.com/?s=base+chain",
		Containers:  "article, div",
		ClassHints:  []string{"post", "article", "news"},
		MinTitleLen: 10,
	}))
}
