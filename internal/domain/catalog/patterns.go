package catalog

import ltypes "github.com/leaselens/leaselens/pkg/types/lease"

// builtinPatterns is the built-in NYC housing-law catalog. Entries are
// enumerated most-severe first; New preserves this order within each severity
// tier. Regexes are compiled case-insensitively, so the sources here are
// written in lower case for readability.
var builtinPatterns = []Pattern{
	// ── Critical ────────────────────────────────────────────────────────
	{
		ID:             "CRIT-001",
		ViolationType:  "Excessive Security Deposit",
		Severity:       ltypes.SeverityCritical,
		DetectionRegex: `security\s+deposit[^.]{0,80}(two|three|four|five|six|[2-9])\s+month`,
		LegalReference: "NYC Housing Maintenance Code § 27-2009; NY General Obligations Law § 7-108(1-a)",
		ExampleClause:  "Tenant shall provide a security deposit equal to three months' rent.",
		Standard:       "Security deposits may not exceed one month's rent.",
		Penalties:      "Refund of the excess plus damages; HSTPA penalties up to twice the deposit.",
		SourceCitation: "Housing Stability and Tenant Protection Act of 2019, Part M",
		ExternalCode:   "GOL-7-108",
	},
	{
		ID:             "CRIT-002",
		ViolationType:  "Waiver of Warranty of Habitability",
		Severity:       ltypes.SeverityCritical,
		DetectionRegex: `(waives?|waiver\s+of)[^.]{0,80}(warranty\s+of\s+)?habitability`,
		LegalReference: "NY Real Property Law § 235-b",
		ExampleClause:  "Tenant waives the implied warranty of habitability and accepts the premises strictly as-is.",
		Standard:       "The warranty of habitability cannot be waived or modified by agreement.",
		Penalties:      "Clause void as against public policy; rent abatement available to tenant.",
		SourceCitation: "Park West Management Corp. v. Mitchell, 47 N.Y.2d 316 (1979)",
		ExternalCode:   "RPL-235-B",
	},
	{
		ID:             "CRIT-003",
		ViolationType:  "Self-Help Eviction",
		Severity:       ltypes.SeverityCritical,
		DetectionRegex: `(landlord|lessor)[^.]{0,80}(change\s+the\s+locks|padlock|remove\s+tenant'?s?\s+(property|belongings))[^.]{0,60}without\s+(court|legal|judicial)`,
		LegalReference: "NYC Administrative Code § 26-521; NY RPAPL § 768",
		ExampleClause:  "Upon default, the Landlord may change the locks and remove Tenant's belongings without court order.",
		Standard:       "Eviction requires a court proceeding; lockouts of occupants of 30+ days are unlawful.",
		Penalties:      "Class A misdemeanor; civil penalties of $1,000-$10,000 per violation.",
		SourceCitation: "Unlawful Eviction Law, Local Law 56 of 1982",
		ExternalCode:   "RPAPL-768",
	},
	{
		ID:             "CRIT-004",
		ViolationType:  "Confession of Judgment",
		Severity:       ltypes.SeverityCritical,
		DetectionRegex: `confess(ion)?\s+of\s+judgment|confesses\s+judgment`,
		LegalReference: "NY CPLR § 3218; NY Real Property Law § 259-c",
		ExampleClause:  "Tenant hereby authorizes confession of judgment against Tenant for any rent claimed due.",
		Standard:       "Confessions of judgment in residential leases are unenforceable.",
		Penalties:      "Clause void; judgment entered on such a clause is subject to vacatur.",
		SourceCitation: "CPLR 3218(a) residential lease carve-out",
		ExternalCode:   "CPLR-3218",
	},
	{
		ID:             "CRIT-005",
		ViolationType:  "Waiver of Right to Legal Action",
		Severity:       ltypes.SeverityCritical,
		DetectionRegex: `waiv\w*[^.]{0,60}(right\s+to\s+(sue|bring\s+(an?\s+)?action)|class\s+action)`,
		LegalReference: "NY General Business Law § 349; NY Real Property Law § 235-c",
		ExampleClause:  "Tenant waives any right to sue the Landlord or to participate in any class action.",
		Standard:       "Tenants cannot be made to surrender access to the courts as a lease condition.",
		Penalties:      "Clause unenforceable as unconscionable; attorney's fees recoverable.",
		SourceCitation: "RPL 235-c unconscionable lease provisions",
		ExternalCode:   "GBL-349",
	},

	// ── High ────────────────────────────────────────────────────────────
	{
		ID:             "HIGH-001",
		ViolationType:  "Excessive Late Fee",
		Severity:       ltypes.SeverityHigh,
		DetectionRegex: `late\s+(fee|charge)[^.]{0,60}(\$\s?([1-9]\d{2,}|[6-9]\d)|([6-9]|[1-9]\d)\s?(%|percent))`,
		LegalReference: "NY Real Property Law § 238-a",
		ExampleClause:  "A late charge of $100 will be assessed for any rent received after the fifth of the month.",
		Standard:       "Late fees are capped at the lesser of $50 or 5% of the monthly rent.",
		Penalties:      "Fee unenforceable above the cap; excess collections refundable.",
		SourceCitation: "HSTPA of 2019, Part M, § 238-a(2)",
		ExternalCode:   "RPL-238-A",
	},
	{
		ID:             "HIGH-002",
		ViolationType:  "One-Sided Attorney's Fees",
		Severity:       ltypes.SeverityHigh,
		DetectionRegex: `(tenant|lessee)[^.]{0,80}(attorneys?'?\s+fees|legal\s+fees)[^.]{0,60}(regardless|irrespective|whether\s+or\s+not|in\s+any\s+(event|proceeding))`,
		LegalReference: "NY Real Property Law § 234",
		ExampleClause:  "Tenant shall pay all of Landlord's attorneys' fees in any proceeding arising under this lease, regardless of outcome.",
		Standard:       "A landlord fee clause implies a reciprocal tenant right to fees; one-way obligations are not enforceable as written.",
		Penalties:      "Reciprocal fee award to prevailing tenant.",
		SourceCitation: "RPL 234 implied covenant",
		ExternalCode:   "RPL-234",
	},
	{
		ID:             "HIGH-003",
		ViolationType:  "Entry Without Notice",
		Severity:       ltypes.SeverityHigh,
		DetectionRegex: `(landlord|lessor)[^.]{0,60}(enter|entry|access)[^.]{0,60}(without\s+(prior\s+)?notice|at\s+any\s+time)`,
		LegalReference: "NYC Housing Maintenance Code § 27-2008",
		ExampleClause:  "Landlord may enter the apartment at any time and without prior notice to Tenant.",
		Standard:       "Entry requires reasonable notice except in emergencies; unrestricted access defeats quiet enjoyment.",
		Penalties:      "Harassment findings; civil penalties under the Tenant Anti-Harassment Act.",
		SourceCitation: "HMC 27-2008; NYC Admin Code 27-2004(a)(48)",
		ExternalCode:   "HMC-27-2008",
	},
	{
		ID:             "HIGH-004",
		ViolationType:  "Tenant Bears All Repairs",
		Severity:       ltypes.SeverityHigh,
		DetectionRegex: `(tenant|lessee)[^.]{0,60}(solely\s+)?(responsible|liable)\s+for\s+all\s+(repairs|maintenance)`,
		LegalReference: "NY Multiple Dwelling Law § 78; NY Real Property Law § 235-b",
		ExampleClause:  "Tenant shall be solely responsible for all repairs to the premises, including structural repairs.",
		Standard:       "Owners must keep dwellings in good repair; the duty cannot be shifted wholesale to tenants.",
		Penalties:      "Clause void; HPD violations issue against the owner regardless of lease text.",
		SourceCitation: "MDL 78(1)",
		ExternalCode:   "MDL-78",
	},
	{
		ID:             "HIGH-005",
		ViolationType:  "Mid-Lease Automatic Rent Increase",
		Severity:       ltypes.SeverityHigh,
		DetectionRegex: `rent\s+(shall|will|may)\s+(automatically\s+)?(be\s+)?increased?[^.]{0,60}(\d{1,2}\s?(%|percent)|at\s+landlord'?s\s+(sole\s+)?discretion)`,
		LegalReference: "NYC Rent Stabilization Law § 26-511; NY Real Property Law § 226-c",
		ExampleClause:  "The monthly rent shall automatically increase by 10% every six months during the term.",
		Standard:       "Rent is fixed for the lease term; stabilized increases follow Rent Guidelines Board orders only.",
		Penalties:      "Rent overcharge award of up to treble damages for stabilized units.",
		SourceCitation: "RSL 26-511(c)",
		ExternalCode:   "RSL-26-511",
	},
	{
		ID:             "HIGH-006",
		ViolationType:  "Security Deposit Interest Waiver",
		Severity:       ltypes.SeverityHigh,
		DetectionRegex: `(security\s+)?deposit[^.]{0,60}(no\s+interest|without\s+interest|shall\s+not\s+(accrue|earn|bear)\s+interest)`,
		LegalReference: "NY General Obligations Law § 7-103(2-a)",
		ExampleClause:  "The security deposit shall not accrue interest during the tenancy.",
		Standard:       "Deposits in buildings of six or more units must be held in interest-bearing accounts for the tenant.",
		Penalties:      "Interest owed to tenant; commingling forfeits the landlord's claim to the deposit.",
		SourceCitation: "GOL 7-103",
		ExternalCode:   "GOL-7-103",
	},

	// ── Medium ──────────────────────────────────────────────────────────
	{
		ID:             "MED-001",
		ViolationType:  "Absolute Sublet Prohibition",
		Severity:       ltypes.SeverityMedium,
		DetectionRegex: `(sublet(ting)?|sublease|assignment)[^.]{0,60}(strictly\s+|absolutely\s+)?(prohibited|forbidden|not\s+permitted|under\s+no\s+circumstances)`,
		LegalReference: "NY Real Property Law § 226-b",
		ExampleClause:  "Subletting of the premises is strictly prohibited under any circumstances.",
		Standard:       "Tenants in buildings of four or more units may sublet with consent not unreasonably withheld.",
		Penalties:      "Unreasonable refusal releases the tenant from the lease.",
		SourceCitation: "RPL 226-b(2)",
		ExternalCode:   "RPL-226-B",
	},
	{
		ID:             "MED-002",
		ViolationType:  "Waiver of Eviction Notice",
		Severity:       ltypes.SeverityMedium,
		DetectionRegex: `waiv\w*[^.]{0,60}notice\s+(to\s+quit|of\s+(petition|eviction|termination))`,
		LegalReference: "NY RPAPL § 711; NY Real Property Law § 232-a",
		ExampleClause:  "Tenant waives service of any notice to quit prior to commencement of eviction proceedings.",
		Standard:       "Statutory predicate notices cannot be waived in advance in a residential lease.",
		Penalties:      "Proceeding dismissed for defective predicate notice.",
		SourceCitation: "RPAPL 711(1)",
		ExternalCode:   "RPAPL-711",
	},
	{
		ID:             "MED-003",
		ViolationType:  "Mandatory Arbitration",
		Severity:       ltypes.SeverityMedium,
		DetectionRegex: `binding\s+arbitration|arbitration[^.]{0,50}(sole|exclusive)\s+(remedy|forum)`,
		LegalReference: "NY CPLR § 7501; NY Real Property Law § 235-c",
		ExampleClause:  "All disputes under this lease shall be resolved exclusively through binding arbitration.",
		Standard:       "Tenants retain access to Housing Court; compelled arbitration of habitability claims is unconscionable.",
		Penalties:      "Clause severed; claims proceed in court.",
		SourceCitation: "RPL 235-c",
		ExternalCode:   "CPLR-7501",
	},
	{
		ID:             "MED-004",
		ViolationType:  "Blanket Guest Prohibition",
		Severity:       ltypes.SeverityMedium,
		DetectionRegex: `no\s+overnight\s+guests?|guests?\s+(are\s+)?(prohibited|not\s+(allowed|permitted))`,
		LegalReference: "NY Real Property Law § 235-f",
		ExampleClause:  "No overnight guests are permitted in the apartment without Landlord's written consent.",
		Standard:       "The Roommate Law guarantees occupancy by the tenant's immediate family and one additional occupant.",
		Penalties:      "Clause void as against RPL 235-f; no eviction may rest on it.",
		SourceCitation: "RPL 235-f(2)",
		ExternalCode:   "RPL-235-F",
	},
	{
		ID:             "MED-005",
		ViolationType:  "Shared Meter Utility Charges",
		Severity:       ltypes.SeverityMedium,
		DetectionRegex: `(tenant|lessee)[^.]{0,60}pay[^.]{0,60}(shared|common\s+area|building)\s+(utilities|electric|meter)`,
		LegalReference: "NY Public Service Law § 52",
		ExampleClause:  "Tenant shall pay a proportionate share of building electric charges measured by a shared meter.",
		Standard:       "Rent-inclusion or submetering with PSC approval is required; pass-through of shared meters is barred.",
		Penalties:      "Charges refundable; PSC complaint available.",
		SourceCitation: "PSL 52",
		ExternalCode:   "PSL-52",
	},
	{
		ID:             "MED-006",
		ViolationType:  "Early Termination Penalty",
		Severity:       ltypes.SeverityMedium,
		DetectionRegex: `(early\s+termination|terminates?\s+(the\s+)?lease\s+early|breaks?\s+the\s+lease)[^.]{0,60}(forfeit|penalty|liquidated\s+damages)`,
		LegalReference: "NY Real Property Law § 227-e",
		ExampleClause:  "In the event of early termination by Tenant, Tenant shall forfeit the entire security deposit as a penalty.",
		Standard:       "Landlords must mitigate damages by re-letting; automatic forfeiture clauses are penalties.",
		Penalties:      "Clause unenforceable beyond actual damages.",
		SourceCitation: "RPL 227-e duty to mitigate",
		ExternalCode:   "RPL-227-E",
	},

	// ── Low ─────────────────────────────────────────────────────────────
	{
		ID:             "LOW-001",
		ViolationType:  "Flooring Coverage Mandate",
		Severity:       ltypes.SeverityLow,
		DetectionRegex: `(carpet|rugs?)[^.]{0,60}(80|eighty)\s?(%|percent)`,
		LegalReference: "NYC Noise Code § 24-218 (no statutory carpet requirement)",
		ExampleClause:  "Tenant shall install carpeting over at least 80 percent of the floor area at Tenant's expense.",
		Standard:       "The 80% rule is lease custom, not law; enforceable only as a reasonable house rule.",
		Penalties:      "None statutory; clause is a negotiable term often presented as mandatory.",
		SourceCitation: "NYC Admin Code 24-218",
		ExternalCode:   "AC-24-218",
	},
	{
		ID:             "LOW-002",
		ViolationType:  "Mandatory Renter's Insurance",
		Severity:       ltypes.SeverityLow,
		DetectionRegex: `renters?'?\s+insurance[^.]{0,60}(required|must)|must\s+(maintain|obtain|carry)[^.]{0,40}insurance`,
		LegalReference: "NY Insurance Law § 3462",
		ExampleClause:  "Tenant must obtain renters insurance with minimum coverage of $300,000 and name Landlord as additional insured.",
		Standard:       "Insurance may be requested but arbitrary coverage floors are not statutorily required of tenants.",
		Penalties:      "None statutory; flagged for tenant awareness.",
		SourceCitation: "INS 3462",
		ExternalCode:   "INS-3462",
	},
	{
		ID:             "LOW-003",
		ViolationType:  "Decoration Prohibition",
		Severity:       ltypes.SeverityLow,
		DetectionRegex: `no\s+(nails|picture\s+hooks)|shall\s+not\s+(hang|affix|mount)[^.]{0,40}(pictures?|shelv|television)`,
		LegalReference: "NYC Housing Maintenance Code § 27-2005 (tenant's reasonable use)",
		ExampleClause:  "Tenant shall not hang pictures or affix any items to the walls of the premises.",
		Standard:       "Ordinary wear from reasonable decoration may not be charged against the deposit.",
		Penalties:      "None statutory; flagged for tenant awareness.",
		SourceCitation: "GOL 7-108(1)(e) normal wear and tear",
		ExternalCode:   "HMC-27-2005",
	},
}
