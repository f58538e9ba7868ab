// Package render turns the results of a generated report into display
// sections, choosing the layout by template type.
package render

var registry = map[TemplateType]Renderer{
	TemplateTypeSentimentAnalysis:   renderSentiment,
	TemplateTypeCompetitiveAnalysis: renderCompetitive,
	TemplateTypeEngagementMetrics:   renderEngagement,
	TemplateTypeContentAnalysis:     renderContent,
	TemplateTypeTrendAnalysis:       renderTrend,
	TemplateTypeUserBehavior:        renderUserBehavior,
}

// RendererFor returns the renderer of a known template type
func RendererFor(t TemplateType) (Renderer, bool) {
	r, ok := registry[t]
	return r, ok
}

// Dispatch renders a report. Reports that are not completed get a single
// notice. Completed reports get the template sections followed by insights
// and recommendations; unknown template types get only the latter.
func Dispatch(report Report) *View {
	templateType := ParseTemplateType(report.TemplateType)
	view := &View{
		ReportID:     report.ID,
		Title:        report.Title,
		TemplateType: templateType,
		Status:       report.Status,
		Sections:     []Section{},
	}

	if report.Status != StatusCompleted {
		view.Sections = append(view.Sections, statusNotice(report))
		return view
	}

	results := ParseResults(report.Results)
	if renderer, ok := registry[templateType]; ok {
		view.Sections = append(view.Sections, renderer(results)...)
	}
	view.Sections = append(view.Sections, listSections(results)...)

	return view
}

func statusNotice(report Report) Section {
	notice := &Notice{Severity: "info", Message: "This report is still being generated. Check back shortly."}
	if report.Status == StatusFailed {
		notice.Severity = "error"
		notice.Message = "Report generation failed."
		if report.ErrorMessage != "" {
			notice.Message = report.ErrorMessage
		}
	}
	return Section{Kind: SectionNotice, Notice: notice}
}
