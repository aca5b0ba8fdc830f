package checkout

import "strings"

// ValidationContext carries the cart and event facts the form rules depend on.
type ValidationContext struct {
	HomeCountry            string
	AllowInternational     bool
	RequireAgeConfirmation bool
	HasAgeRestrictedItem   bool
	HasLocalPickupOnlyItem bool
}

// IsInternational reports whether the buyer's country differs from home.
func (v ValidationContext) IsInternational(country string) bool {
	home := strings.TrimSpace(v.HomeCountry)
	if home == "" {
		home = "US"
	}
	return !strings.EqualFold(strings.TrimSpace(country), home)
}

// Validate evaluates every rule and returns the complete field error map. An
// empty map means the details are acceptable.
func Validate(details BuyerDetails, vctx ValidationContext) map[string]string {
	problems := map[string]string{}

	requireField(problems, "first_name", details.FirstName)
	requireField(problems, "last_name", details.LastName)
	requireField(problems, "email", details.Email)
	requireField(problems, "confirm_email", details.ConfirmEmail)
	requireField(problems, "phone", details.Phone)
	requireField(problems, "address", details.Address)
	requireField(problems, "city", details.City)
	requireField(problems, "zip", details.Zip)
	requireField(problems, "country", details.Country)

	if details.Email != "" && details.ConfirmEmail != "" && details.Email != details.ConfirmEmail {
		problems["confirm_email"] = "email addresses do not match"
	}

	international := vctx.IsInternational(details.Country)
	if !international && strings.TrimSpace(details.State) == "" {
		problems["state"] = "this field is required"
	}

	if international && !vctx.AllowInternational {
		problems["country"] = "international orders are not accepted for this event"
	}
	if international && vctx.HasLocalPickupOnlyItem {
		problems["country"] = "cart contains local pickup only items"
	}

	if (vctx.HasAgeRestrictedItem || vctx.RequireAgeConfirmation) && !details.AgeConfirmed {
		problems["age_confirmed"] = "age confirmation is required"
	}

	return problems
}

func requireField(problems map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		problems[name] = "this field is required"
	}
}
