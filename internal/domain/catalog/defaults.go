package catalog

// DefaultDimensions returns the defence-readiness questionnaire.
func DefaultDimensions() []Dimension {
	return []Dimension{
		{
			Name: "Product",
			Questions: []string{
				"We have at least a functional prototype tested in a relevant environment (pilot, lab, early users).",
				"The product clearly addresses Defence-related needs (surveillance, logistics, cyber, C2, etc.).",
				"We have identified specific Defence technical requirements (standards, interoperability) and started adapting the product.",
				"We have the capacity (in-house or via partners) to deliver pilots or small Defence contracts.",
			},
		},
		{
			Name: "Market",
			Questions: []string{
				"We know the main customers and decision-makers in Defence (MoD, Armed Forces, NATO, EU, integrators).",
				"We already had meetings or active contacts with potential Defence clients or partners.",
				"We have strategic partnerships with organisations already established in the Defence sector.",
				"We have a dedicated value proposition for Defence, distinct from our civil/commercial offer.",
			},
		},
		{
			Name: "Documentation",
			Questions: []string{
				"Relevant IP (patents, software, trademarks) is identified and protected where needed.",
				"Technical documentation (architectures, specs, manuals, data sheets) is organised and up to date.",
				"We have NDA templates and contract templates suitable for pilots/partnerships in Defence.",
				"We have identified and started relevant licensing/accreditation processes to operate in Defence.",
			},
		},
		{
			Name: "Security",
			Questions: []string{
				"We have basic information security policies (access control, passwords, backups, device management).",
				"Sensitive information (code, data, critical docs) is protected (encryption, restricted access, separated environments).",
				"Key staff received awareness/training on cybersecurity and information protection.",
				"Facilities/processes have adequate physical and organisational security (controlled access, visitor logs, restricted areas).",
			},
		},
		{
			Name: "Certifications",
			Questions: []string{
				"We have relevant quality certifications (e.g. ISO 9001) OR processes already close to that level.",
				"We have or are implementing information security practices/certifications (e.g. ISO 27001).",
				"We identified Defence-specific or adjacent certifications (aero/space, cyber) that may be required.",
				"There is a certification roadmap with priorities, timelines and estimated resources.",
			},
		},
	}
}

// Default returns the built-in catalog.
func Default() Catalog {
	return MustNew(DefaultDimensions())
}
