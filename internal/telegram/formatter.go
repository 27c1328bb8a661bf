package telegram

import (
	"fmt"
	"html"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/service"
)

var printer = message.NewPrinter(language.English)

func FormatAnalysis(t *domain.Terrain, a *domain.Analysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(t.Title)))
	sb.WriteString(fmt.Sprintf("%s, %s m², %s\n\n",
		html.EscapeString(t.FullAddress()),
		formatNumber(t.SurfaceM2),
		formatEUR(t.Price),
	))

	if a == nil {
		sb.WriteString("<i>No analysis yet.</i>")
		return sb.String()
	}

	m := a.Metrics
	sb.WriteString(fmt.Sprintf("<b>Score:</b> %.1f/100 (%s)\n", a.AIScore, ratingLabel(a.ProfitabilityLabel)))
	sb.WriteString(fmt.Sprintf("<b>Recommendation:</b> %s\n", recommendationLabel(a.Recommendation.Type)))
	sb.WriteString(fmt.Sprintf("<b>Risk:</b> %s %s\n\n", getRiskIcon(a.Risk.OverallRisk), a.Risk.OverallRisk))

	marketNote := ""
	if a.MarketPriceSource == domain.MarketPriceFromFallback {
		marketNote = " <i>(regional estimate)</i>"
	}
	sb.WriteString(fmt.Sprintf("Price: %s/m² vs market %s/m²%s\n",
		formatEUR(m.PricePerM2), formatEUR(m.MarketPricePerM2), marketNote))
	sb.WriteString(fmt.Sprintf("Difference: %+.1f%%\n", m.PriceDifferencePercentage))
	sb.WriteString(fmt.Sprintf("Lots: %d\n", m.LotsPossible))
	sb.WriteString(fmt.Sprintf("Resale: %s to %s\n", formatEUR(m.ResaleEstimateMin), formatEUR(m.ResaleEstimateMax)))
	sb.WriteString(fmt.Sprintf("Total investment: %s\n", formatEUR(a.TotalInvestmentCost(t.Price))))
	sb.WriteString(fmt.Sprintf("Net margin: %s (%.1f%%)\n", formatEUR(m.NetMarginEstimate), m.ProfitMarginPercentage))

	if a.Recommendation.Comment != "" {
		sb.WriteString("\n" + html.EscapeString(a.Recommendation.Comment) + "\n")
	}

	if len(a.Risk.Findings) > 0 {
		sb.WriteString("\n<b>Risks:</b>\n")
		for _, f := range a.Risk.Findings {
			sb.WriteString(fmt.Sprintf("%s %s\n", getRiskIcon(f.Level), html.EscapeString(f.Description)))
		}
	}

	if len(a.Recommendation.Suggestions) > 0 {
		sb.WriteString("\n<b>Next steps:</b>\n")
		for _, s := range a.Recommendation.Suggestions {
			sb.WriteString("• " + html.EscapeString(s) + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func FormatTerrainsList(items []service.TerrainWithAnalysis) string {
	var sb strings.Builder
	sb.WriteString("<b>Your terrains:</b>\n\n")

	for i, item := range items {
		t := item.Terrain
		summary := "not analysed"
		if item.Analysis != nil {
			summary = fmt.Sprintf("%.0f/100, %s", item.Analysis.AIScore, recommendationLabel(item.Analysis.Recommendation.Type))
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s m², %s [%s]\n\n",
			i+1,
			html.EscapeString(t.Title),
			formatNumber(t.SurfaceM2),
			formatEUR(t.Price),
			summary,
		))
	}

	sb.WriteString(fmt.Sprintf("Total: %d", len(items)))
	return sb.String()
}

func FormatMarketPrice(city, zip string, price float64, known bool) string {
	place := html.EscapeString(city + " " + zip)
	if !known {
		return fmt.Sprintf("Not enough listings to estimate a price for %s.", place)
	}
	return fmt.Sprintf("Average asking price for land in %s: <b>%s/m²</b>", place, formatEUR(price))
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

// findSafeSplitPoint prefers a line break or space that is not inside an HTML tag.
func findSafeSplitPoint(text string, maxLen int) int {
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}
		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

func getRiskIcon(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return "●"
	case domain.RiskMedium:
		return "◐"
	default:
		return "○"
	}
}

func ratingLabel(r domain.Rating) string {
	return strings.ReplaceAll(r.String(), "_", " ")
}

func recommendationLabel(r domain.RecommendationType) string {
	return strings.ReplaceAll(r.String(), "_", " ")
}

func formatEUR(v float64) string {
	return printer.Sprintf("%d €", int64(math.Round(v)))
}

func formatNumber(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}
