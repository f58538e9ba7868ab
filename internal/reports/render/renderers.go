package render

import (
	"fmt"
)

// Renderer produces the template specific sections of a completed report
type Renderer func(results Results) []Section

func appendTables(sections []Section, tables ...func() (Section, bool)) []Section {
	for _, build := range tables {
		if s, ok := build(); ok {
			sections = append(sections, s)
		}
	}
	return sections
}

func renderSentiment(results Results) []Section {
	dist := results.Object("sentiment_distribution")
	sections := visualizationSections(results)
	sections = append(sections, metricsSection(
		percentCard("Positive", dist, "positive"),
		percentCard("Neutral", dist, "neutral"),
		percentCard("Negative", dist, "negative"),
	))

	posts := []column{col("Content", "content", "text", "caption"), col("Platform", "platform"), col("Score", "sentiment_score", "score")}
	return appendTables(sections,
		func() (Section, bool) {
			return tableSection(results, "sentiment_by_brand", "Sentiment by Brand", "brand",
				col("Brand", "brand", "name"), pct("Positive", "positive"), pct("Neutral", "neutral"), pct("Negative", "negative"))
		},
		func() (Section, bool) {
			return tableSection(results, "top_positive_posts", "Top Positive Posts", "id", posts...)
		},
		func() (Section, bool) {
			return tableSection(results, "top_negative_posts", "Top Negative Posts", "id", posts...)
		},
	)
}

func renderCompetitive(results Results) []Section {
	brand := results.Object("brand_metrics")
	sections := visualizationSections(results)
	competitors := float64(results.Len("competitors"))
	sections = append(sections, metricsSection(
		Card{Label: "Competitors Analyzed", Value: formatNumber(competitors), Raw: competitors},
		percentCard("Brand Engagement Rate", brand, "engagement_rate"),
		percentCard("Share of Voice", brand, "share_of_voice"),
	))

	return appendTables(sections,
		func() (Section, bool) {
			return tableSection(results, "competitors", "Competitor Comparison", "name",
				col("Competitor", "name", "username"), col("Followers", "followers", "followers_count"),
				col("Posts", "posts_count", "total_posts"), pct("Engagement Rate", "engagement_rate"),
				pct("Share of Voice", "share_of_voice"))
		},
	)
}

func renderEngagement(results Results) []Section {
	sections := visualizationSections(results)
	sections = append(sections, metricsSection(
		numberCard("Total Engagement", results, "total_engagement"),
		percentCard("Avg Engagement Rate", results, "avg_engagement_rate"),
		numberCard("Total Posts", results, "total_posts"),
	))

	return appendTables(sections,
		func() (Section, bool) {
			return tableSection(results, "top_performing_posts", "Top Performing Posts", "id",
				col("Content", "content", "text", "caption"), col("Platform", "platform"),
				col("Likes", "likes"), col("Comments", "comments"), col("Shares", "shares"),
				pct("Engagement Rate", "engagement_rate"))
		},
		func() (Section, bool) {
			return tableSection(results, "engagement_by_platform", "Engagement by Platform", "platform",
				col("Platform", "platform"), col("Total Engagement", "total_engagement", "engagement", "value"),
				pct("Avg Engagement Rate", "avg_engagement_rate", "engagement_rate"), col("Posts", "posts", "total_posts"))
		},
	)
}

func renderContent(results Results) []Section {
	sections := visualizationSections(results)
	contentTypes := float64(results.Len("content_types"))
	sections = append(sections, metricsSection(
		numberCard("Total Posts", results, "total_posts"),
		Card{Label: "Content Types", Value: formatNumber(contentTypes), Raw: contentTypes},
		numberCard("Avg Engagement", results, "avg_engagement"),
	))

	return appendTables(sections,
		func() (Section, bool) {
			return tableSection(results, "top_hashtags", "Top Hashtags", "hashtag",
				col("Hashtag", "hashtag", "tag"), col("Uses", "count", "value"), col("Avg Engagement", "avg_engagement"))
		},
		func() (Section, bool) {
			return tableSection(results, "content_types", "Content Types", "type",
				col("Type", "type", "content_type"), col("Posts", "count", "value"), col("Avg Engagement", "avg_engagement"))
		},
	)
}

func renderTrend(results Results) []Section {
	sections := visualizationSections(results)
	sections = append(sections, metricsSection(
		percentCard("Growth Rate", results, "growth_rate"),
		textCard("Trend Direction", results.String("trend_direction")),
		textCard("Peak Period", results.String("peak_period")),
	))

	return appendTables(sections,
		func() (Section, bool) {
			return tableSection(results, "trend_data", "Trend by Period", "period",
				col("Period", "period", "date"), col("Posts", "posts", "post_count"),
				col("Engagement", "engagement", "total_engagement"), pct("Change", "change", "growth"))
		},
	)
}

func renderUserBehavior(results Results) []Section {
	sections := visualizationSections(results)

	peak := "N/A"
	if hour, ok := results.Number("peak_activity_hour"); ok {
		peak = fmt.Sprintf("%02d:00", int(hour))
	}
	sections = append(sections, metricsSection(
		numberCard("Active Users", results, "active_users"),
		numberCard("Avg Posts/User", results, "avg_posts_per_user"),
		textCard("Peak Activity Hour", peak),
	))

	return appendTables(sections,
		func() (Section, bool) {
			return tableSection(results, "activity_by_hour", "Activity by Hour", "hour",
				col("Hour", "hour"), col("Activity", "activity", "count", "value"))
		},
		func() (Section, bool) {
			return tableSection(results, "top_users", "Top Users", "username",
				col("User", "username", "name"), col("Posts", "posts", "post_count"),
				col("Engagement", "engagement", "total_engagement"))
		},
	)
}
