package domain

// Built-in plan catalog. The external store is an override layer on top of
// this table; resolution order is store record, then built-in, then not found.
// A fresh deployment persists these at bootstrap so the store self-populates.
var builtinTemplates = []PlanTemplate{
	{
		PlanID:       PlanFree,
		Name:         "Free",
		Description:  "Get started with basic documents for a single company.",
		DisplayOrder: 1,
		IsActive:     true,
		PlanLimits: PlanLimits{
			MaxUsers:              1,
			MaxDocumentsPerMonth:  15,
			MaxLogos:              1,
			MaxStorageMB:          100,
			MaxCustomers:          20,
			MaxContractors:        5,
			MaxPDFExportsPerMonth: 10,
			MaxCompanies:          1,
			HistoryRetentionDays:  30,
		},
		PlanFeatures: PlanFeatures{
			Watermark:      true,
			DocumentAccess: DocumentAccessBasic,
		},
		MonthlyPrice: 0,
		YearlyPrice:  0,
		Currency:     "THB",
	},
	{
		PlanID:       PlanStarter,
		Name:         "Starter",
		Description:  "Unlimited documents and every document type for small teams.",
		DisplayOrder: 2,
		IsActive:     true,
		IsPopular:    true,
		PlanLimits: PlanLimits{
			MaxUsers:              3,
			MaxDocumentsPerMonth:  Unlimited,
			MaxLogos:              3,
			MaxStorageMB:          1024,
			MaxCustomers:          200,
			MaxContractors:        50,
			MaxPDFExportsPerMonth: 100,
			MaxCompanies:          1,
			HistoryRetentionDays:  365,
		},
		PlanFeatures: PlanFeatures{
			MultiProfile:     true,
			ExportFormats:    true,
			LineNotification: true,
			DocumentAccess:   DocumentAccessFull,
		},
		MonthlyPrice: 19900,
		YearlyPrice:  199000,
		Currency:     "THB",
	},
	{
		PlanID:       PlanBusiness,
		Name:         "Business",
		Description:  "Multi-company operations with API access and advanced reports.",
		DisplayOrder: 3,
		IsActive:     true,
		PlanLimits: PlanLimits{
			MaxUsers:              10,
			MaxDocumentsPerMonth:  Unlimited,
			MaxLogos:              10,
			MaxStorageMB:          10240,
			MaxCustomers:          Unlimited,
			MaxContractors:        Unlimited,
			MaxPDFExportsPerMonth: Unlimited,
			MaxCompanies:          3,
			HistoryRetentionDays:  Unlimited,
		},
		PlanFeatures: PlanFeatures{
			MultiProfile:     true,
			APIAccess:        true,
			CustomDomain:     true,
			PrioritySupport:  true,
			ExportFormats:    true,
			AdvancedReports:  true,
			CustomTemplates:  true,
			LineNotification: true,
			DocumentAccess:   DocumentAccessFull,
		},
		MonthlyPrice: 59900,
		YearlyPrice:  599000,
		Currency:     "THB",
	},
	{
		PlanID:       PlanEnterprise,
		Name:         "Enterprise",
		Description:  "Unlimited everything with dedicated support. Contact sales.",
		DisplayOrder: 4,
		IsActive:     true,
		PlanLimits: PlanLimits{
			MaxUsers:              Unlimited,
			MaxDocumentsPerMonth:  Unlimited,
			MaxLogos:              Unlimited,
			MaxStorageMB:          Unlimited,
			MaxCustomers:          Unlimited,
			MaxContractors:        Unlimited,
			MaxPDFExportsPerMonth: Unlimited,
			MaxCompanies:          Unlimited,
			HistoryRetentionDays:  Unlimited,
		},
		PlanFeatures: PlanFeatures{
			MultiProfile:     true,
			APIAccess:        true,
			CustomDomain:     true,
			PrioritySupport:  true,
			ExportFormats:    true,
			AdvancedReports:  true,
			CustomTemplates:  true,
			LineNotification: true,
			DedicatedSupport: true,
			FullAuditLog:     true,
			DocumentAccess:   DocumentAccessFull,
		},
		MonthlyPrice: PriceContactSales,
		YearlyPrice:  PriceContactSales,
		Currency:     "THB",
	},
}

// BuiltinTemplates returns a copy of the compiled-in catalog.
func BuiltinTemplates() []PlanTemplate {
	out := make([]PlanTemplate, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// BuiltinTemplate returns the compiled-in definition for a plan identifier.
func BuiltinTemplate(planID string) (PlanTemplate, bool) {
	for _, tpl := range builtinTemplates {
		if tpl.PlanID == planID {
			return tpl, true
		}
	}
	return PlanTemplate{}, false
}
