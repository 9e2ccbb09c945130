package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

var (
	genreButton     = Selector{Tag: "span", Attr: "class", Value: "BookPageMetadataSection__genreButton"}
	featuredDetails = Selector{Tag: "div", Attr: "class", Value: "FeaturedDetails"}
	pagesFormat     = Selector{Tag: "p", Attr: "data-testid", Value: "pagesFormat"}
	publicationInfo = Selector{Tag: "p", Attr: "data-testid", Value: "publicationInfo"}
	formatted       = Selector{Tag: "span", Attr: "class", Value: "Formatted"}
	reviewCard      = Selector{Tag: "article", Attr: "class", Value: "ReviewCard"}
	ratingStars     = Selector{Tag: "span", Attr: "class", Value: "RatingStars RatingStars__small"}
)

// ParseDetail extracts enrichment fields from a book detail page.
// Every field is optional; a missing or malformed field is left absent.
func ParseDetail(doc *goquery.Selection) *models.BookDetail {
	detail := &models.BookDetail{}

	for _, genre := range All(doc, genreButton) {
		if genre != "" {
			detail.Genres = append(detail.Genres, genre)
		}
	}

	if featured, ok := Find(doc, featuredDetails); ok {
		if text, ok := Text(featured, pagesFormat); ok {
			if pages, ok := LeadingInt(text); ok && pages > 0 {
				detail.PageCount = &pages
			}
		}
		if text, ok := Text(featured, publicationInfo); ok {
			if published, ok := ParsePublicationDate(text); ok {
				detail.PublicationDate = published
			}
		}
	}

	detail.Synopsis, _ = Text(doc, formatted)

	if doc != nil {
		doc.Find(reviewCard.CSS()).Each(func(_ int, card *goquery.Selection) {
			detail.Reviews = append(detail.Reviews, ParseReview(card))
		})
	}
	return detail
}

// ParseReview extracts the star rating and body of a review card.
func ParseReview(card *goquery.Selection) models.Review {
	review := models.Review{}
	if label, ok := Attr(card, ratingStars, "aria-label"); ok {
		review.Rating, _ = ParseStarLabel(label)
	}
	review.Content, _ = Text(card, formatted)
	return review
}
