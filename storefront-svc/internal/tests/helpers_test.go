package tests

import (
	"testing"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func kg(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func brisket() domain.Product {
	return domain.Product{
		ID:    1,
		Meat:  "Brisket",
		Price: kg("100"),
		Avail: true,
		Spice: domain.Spice{Recipe1: "classic", Recipe2: "pepper"},
	}
}

func ribs() domain.Product {
	return domain.Product{
		ID:    2,
		Meat:  "Ribs",
		Price: kg("250.50"),
		Avail: true,
		Spice: domain.Spice{Recipe1: "honey"},
	}
}

func sausage() domain.Product {
	return domain.Product{
		ID:    3,
		Meat:  "Sausage",
		Price: kg("80"),
		Avail: true,
		Spice: domain.Spice{Recipe2: "garlic"},
	}
}

func signToken(t *testing.T, username string, role domain.Role, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"username":     username,
		"role":         string(role),
		"phone_number": "+79991234567",
		"name":         "Ivan",
		"exp":          time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}
