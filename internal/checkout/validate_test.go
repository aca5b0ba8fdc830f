package checkout

import "testing"

func validDetails() BuyerDetails {
	return BuyerDetails{
		FirstName:    "Dana",
		LastName:     "Quint",
		Email:        "dana@example.com",
		ConfirmEmail: "dana@example.com",
		Phone:        "555-0100",
		Address:      "1 Main St",
		City:         "Springfield",
		State:        "IL",
		Zip:          "62701",
		Country:      "US",
	}
}

func TestValidateAcceptsDomesticOrder(t *testing.T) {
	problems := Validate(validDetails(), ValidationContext{HomeCountry: "US"})
	if len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	problems := Validate(BuyerDetails{}, ValidationContext{HomeCountry: "US"})

	for _, field := range []string{"first_name", "last_name", "email", "confirm_email", "phone", "address", "city", "zip", "country"} {
		if problems[field] != "this field is required" {
			t.Fatalf("expected required error for %s, got %q", field, problems[field])
		}
	}
}

func TestValidateEmailMismatch(t *testing.T) {
	details := validDetails()
	details.ConfirmEmail = "other@example.com"

	problems := Validate(details, ValidationContext{HomeCountry: "US"})
	if problems["confirm_email"] != "email addresses do not match" {
		t.Fatalf("expected mismatch error, got %q", problems["confirm_email"])
	}
}

func TestValidateStateRequiredForDomestic(t *testing.T) {
	details := validDetails()
	details.State = ""

	problems := Validate(details, ValidationContext{HomeCountry: "US"})
	if problems["state"] != "this field is required" {
		t.Fatalf("expected state to be required, got %q", problems["state"])
	}
}

func TestValidateStateOptionalForInternational(t *testing.T) {
	details := validDetails()
	details.Country = "CA"
	details.State = ""

	problems := Validate(details, ValidationContext{HomeCountry: "US", AllowInternational: true})
	if _, ok := problems["state"]; ok {
		t.Fatalf("state should be optional for international orders, got %q", problems["state"])
	}
}

func TestValidateInternationalDisallowed(t *testing.T) {
	details := validDetails()
	details.Country = "CA"

	problems := Validate(details, ValidationContext{HomeCountry: "US"})
	if problems["country"] != "international orders are not accepted for this event" {
		t.Fatalf("expected international rejection, got %q", problems["country"])
	}
}

func TestValidateLocalPickupOnlyBlocksInternational(t *testing.T) {
	details := validDetails()
	details.Country = "CA"

	problems := Validate(details, ValidationContext{
		HomeCountry:            "US",
		AllowInternational:     true,
		HasLocalPickupOnlyItem: true,
	})
	if problems["country"] != "cart contains local pickup only items" {
		t.Fatalf("expected pickup-only rejection, got %q", problems["country"])
	}
}

func TestValidateAgeConfirmation(t *testing.T) {
	details := validDetails()

	problems := Validate(details, ValidationContext{HomeCountry: "US", HasAgeRestrictedItem: true})
	if problems["age_confirmed"] != "age confirmation is required" {
		t.Fatalf("expected age confirmation error, got %q", problems["age_confirmed"])
	}

	details.AgeConfirmed = true
	problems = Validate(details, ValidationContext{HomeCountry: "US", HasAgeRestrictedItem: true})
	if _, ok := problems["age_confirmed"]; ok {
		t.Fatal("age confirmation error should clear once confirmed")
	}

	problems = Validate(validDetails(), ValidationContext{HomeCountry: "US", RequireAgeConfirmation: true})
	if problems["age_confirmed"] != "age confirmation is required" {
		t.Fatalf("event level age gate should apply, got %q", problems["age_confirmed"])
	}
}

func TestIsInternationalIsCaseInsensitive(t *testing.T) {
	vctx := ValidationContext{HomeCountry: "US"}
	if vctx.IsInternational("us") {
		t.Fatal("lowercase home country should be domestic")
	}
	if !vctx.IsInternational("GB") {
		t.Fatal("GB should be international")
	}
}
