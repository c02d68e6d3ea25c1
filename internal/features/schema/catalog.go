package schema

// builtinSections is the CRM catalog registered at startup. Relation
// fields hold the target record's id hex in the data map; derived
// fields are computed during materialization and never stored.
func builtinSections() []Section {
	return []Section{
		{
			Name:         "lead_statuses",
			Display:      "Lead Statuses",
			DisplayField: "name",
			Fields: []Field{
				{Name: "name", Display: "Status Name", Kind: KindText},
				{Name: "order", Display: "Status Order", Kind: KindNumeric},
				{Name: "probability", Display: "Probability", Kind: KindNumeric},
				{Name: "is_final", Display: "Is Final Stage", Kind: KindBool},
			},
		},
		{
			Name:         "opportunity_stages",
			Display:      "Opportunity Stages",
			DisplayField: "name",
			Fields: []Field{
				{Name: "name", Display: "Stage Name", Kind: KindText},
				{Name: "order", Display: "Stage Order", Kind: KindNumeric},
				{Name: "probability", Display: "Probability", Kind: KindNumeric},
				{Name: "is_final", Display: "Is Final Stage", Kind: KindBool},
				{Name: "stage_type", Display: "Stage Type", Kind: KindChoice, Choices: []Choice{
					{Value: "open", Display: "Open"},
					{Value: "closed_won", Display: "Closed Won"},
					{Value: "closed_lost", Display: "Closed Lost"},
				}},
			},
		},
		{
			Name:         "accounts",
			Display:      "Accounts",
			DisplayField: "name",
			Fields: []Field{
				{Name: "name", Display: "Account Name", Kind: KindText},
				{Name: "industry", Display: "Industry", Kind: KindChoice, Choices: industryChoices()},
				{Name: "no_of_employees", Display: "No of Employees", Kind: KindNumeric},
				{Name: "annual_revenue", Display: "Annual Revenue", Kind: KindNumeric},
				{Name: "website", Display: "Website", Kind: KindText},
				{Name: "city", Display: "City", Kind: KindText},
				{Name: "state", Display: "State", Kind: KindText},
			},
		},
		{
			Name:         "contacts",
			Display:      "Contacts",
			DisplayField: "last_name",
			Fields: []Field{
				{Name: "first_name", Display: "First Name", Kind: KindText},
				{Name: "last_name", Display: "Last Name", Kind: KindText},
				{Name: "email", Display: "Email", Kind: KindText},
				{Name: "contact_number", Display: "Contact Number", Kind: KindText},
				{Name: "account", Display: "Account", Kind: KindRelation, Relation: "accounts"},
				{Name: "city", Display: "City", Kind: KindText},
			},
		},
		{
			Name:         "leads",
			Display:      "Leads",
			DisplayField: "last_name",
			Fields: []Field{
				{Name: "first_name", Display: "First Name", Kind: KindText},
				{Name: "last_name", Display: "Last Name", Kind: KindText},
				{Name: "email", Display: "Email", Kind: KindText},
				{Name: "lead_company", Display: "Company", Kind: KindText},
				{Name: "lead_source", Display: "Lead Source", Kind: KindChoice, Choices: leadSourceChoices()},
				{Name: "lead_status", Display: "Lead Status", Kind: KindRelation, Relation: "lead_statuses"},
				{Name: "industry", Display: "Industry", Kind: KindChoice, Choices: industryChoices()},
				{Name: "no_of_employees", Display: "No of Employees", Kind: KindNumeric},
				{Name: "annual_revenue", Display: "Annual Revenue", Kind: KindNumeric},
				{Name: "city", Display: "City", Kind: KindText},
				{Name: "state", Display: "State", Kind: KindText},
				{Name: "lead_score", Display: "Lead Score", Kind: KindNumeric},
				{Name: "is_convert", Display: "Converted", Kind: KindBool},
			},
		},
		{
			Name:         "opportunities",
			Display:      "Opportunities",
			DisplayField: "name",
			Fields: []Field{
				{Name: "name", Display: "Opportunity Name", Kind: KindText},
				{Name: "amount", Display: "Amount", Kind: KindNumeric},
				{Name: "quantity", Display: "Quantity", Kind: KindNumeric},
				{Name: "close_date", Display: "Close Date", Kind: KindDate},
				{Name: "stage", Display: "Stage", Kind: KindRelation, Relation: "opportunity_stages"},
				{Name: "probability", Display: "Probability", Kind: KindNumeric},
				{Name: "opportunity_score", Display: "Opportunity Score", Kind: KindNumeric},
				{Name: "account", Display: "Account", Kind: KindRelation, Relation: "accounts"},
				{Name: "opportunity_type", Display: "Type", Kind: KindChoice, Choices: []Choice{
					{Value: "new_business", Display: "New Business"},
					{Value: "existing_business", Display: "Existing Business"},
				}},
				{Name: "lead_source", Display: "Lead Source", Kind: KindChoice, Choices: leadSourceChoices()},
				{Name: "forecast_category", Display: "Forecast Category", Kind: KindChoice, Choices: []Choice{
					{Value: "pipeline", Display: "Pipeline"},
					{Value: "best_case", Display: "Best Case"},
					{Value: "commit", Display: "Commit"},
					{Value: "omitted", Display: "Omitted"},
				}},
				{Name: "expected_revenue", Display: "Expected Revenue", Kind: KindNumeric,
					Expr: `amount * probability / 100.0`},
			},
		},
	}
}

func leadSourceChoices() []Choice {
	return []Choice{
		{Value: "web", Display: "Web"},
		{Value: "referral", Display: "Referral"},
		{Value: "trade_show", Display: "Trade Show"},
		{Value: "cold_call", Display: "Cold Call"},
		{Value: "advertisement", Display: "Advertisement"},
	}
}

func industryChoices() []Choice {
	return []Choice{
		{Value: "technology", Display: "Technology"},
		{Value: "finance", Display: "Finance"},
		{Value: "healthcare", Display: "Healthcare"},
		{Value: "manufacturing", Display: "Manufacturing"},
		{Value: "retail", Display: "Retail"},
		{Value: "education", Display: "Education"},
		{Value: "other", Display: "Other"},
	}
}
