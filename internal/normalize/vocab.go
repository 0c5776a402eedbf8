package normalize

// Static clinical vocabulary. Kept in one place so medical reviewers can
// audit the expansions without reading the normalizer logic.

// abbreviations maps EMS shorthand to full terms. Multi-word keys are
// allowed; expansion is longest-match-first so "v fib" wins over "fib".
var abbreviations = map[string]string{
	"abd":      "abdominal",
	"afib":     "atrial fibrillation",
	"amio":     "amiodarone",
	"ams":      "altered mental status",
	"bgl":      "blood glucose level",
	"bls":      "basic life support",
	"bp":       "blood pressure",
	"brady":    "bradycardia",
	"bvm":      "bag valve mask",
	"cath":     "catheter",
	"chf":      "congestive heart failure",
	"copd":     "chronic obstructive pulmonary disease",
	"cpap":     "continuous positive airway pressure",
	"cpr":      "cardiopulmonary resuscitation",
	"cva":      "stroke",
	"d50":      "dextrose 50%",
	"dka":      "diabetic ketoacidosis",
	"epi":      "epinephrine",
	"ett":      "endotracheal tube",
	"fx":       "fracture",
	"gsw":      "gunshot wound",
	"hr":       "heart rate",
	"htn":      "hypertension",
	"im":       "intramuscular",
	"io":       "intraosseous",
	"iv":       "intravenous",
	"loc":      "loss of consciousness",
	"mi":       "myocardial infarction",
	"narcan":   "naloxone",
	"neb":      "nebulizer",
	"ngt":      "nasogastric tube",
	"nrb":      "non-rebreather mask",
	"ntg":      "nitroglycerin",
	"peds":     "pediatric",
	"pe":       "pulmonary embolism",
	"psvt":     "paroxysmal supraventricular tachycardia",
	"pvc":      "premature ventricular contraction",
	"rosc":     "return of spontaneous circulation",
	"rsi":      "rapid sequence intubation",
	"sob":      "shortness of breath",
	"stemi":    "st elevation myocardial infarction",
	"svt":      "supraventricular tachycardia",
	"sz":       "seizure",
	"tbi":      "traumatic brain injury",
	"v fib":    "ventricular fibrillation",
	"v tach":   "ventricular tachycardia",
	"vfib":     "ventricular fibrillation",
	"vtach":    "ventricular tachycardia",
	"w/":       "with",
	"y/o":      "year old",
}

// typoCorrections fixes common misspellings seen in voice transcription and
// hurried typing. Applied after abbreviation expansion, single-word only.
var typoCorrections = map[string]string{
	"epinepherine":   "epinephrine",
	"epinephrin":     "epinephrine",
	"amioderone":     "amiodarone",
	"amiodorone":     "amiodarone",
	"benadril":       "diphenhydramine",
	"benadryl":       "diphenhydramine",
	"nitroglycerine": "nitroglycerin",
	"anaphalaxis":    "anaphylaxis",
	"anaphylaxsis":   "anaphylaxis",
	"seizsure":       "seizure",
	"siezure":        "seizure",
	"tachicardia":    "tachycardia",
	"bradicardia":    "bradycardia",
}

// Intent keyword buckets. First bucket that matches wins. Contraindication
// is checked before dosing because "when not to give" questions usually
// mention doses too.
var (
	dosingKeywords = []string{
		"dose", "dosing", "dosage", "mg", "mcg", "ml", "mg/kg", "mcg/kg",
		"how much", "units", "concentration", "drip rate", "infusion rate",
	}
	procedureKeywords = []string{
		"how to", "procedure", "technique", "steps", "placement", "insert",
		"intubation", "intubate", "cricothyrotomy", "decompression",
		"cardioversion", "defibrillate", "pacing", "splint", "tourniquet",
	}
	contraindicationKeywords = []string{
		"contraindication", "contraindicated", "when not to", "avoid",
		"should not", "do not give", "interaction", "allergy", "allergic",
	}
)

// urgencyTerms are high-acuity presentations that flag a query as urgent.
var urgencyTerms = []string{
	"cardiac arrest", "arrest", "anaphylaxis", "not breathing", "apneic",
	"unresponsive", "ventricular fibrillation", "pulseless", "choking",
	"severe hemorrhage", "exsanguinating", "status epilepticus",
	"tension pneumothorax", "airway obstruction",
}
