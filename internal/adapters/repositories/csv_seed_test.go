package repositories

import (
	"context"
	"delivery-sim-service/internal/domain"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDriversCSV(t *testing.T) {
	in := "name,shift_hours,past_week_hours\nAmit,6,6|8|7|7|7|6|10\nPriya, 4 ,6|8|8|8|7|8|8\n"

	drivers, err := ParseDriversCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 2 {
		t.Fatalf("got %d drivers, want 2", len(drivers))
	}
	if drivers[0].Name != "Amit" || drivers[0].PastWeekHours[6] != 10 {
		t.Fatalf("got %+v, want Amit with last day 10", drivers[0])
	}
	if drivers[1].ShiftHours != 4 {
		t.Fatalf("shift_hours = %v, want 4", drivers[1].ShiftHours)
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "short week",
			run: func() error {
				_, err := ParseDriversCSV(strings.NewReader("name,shift_hours,past_week_hours\nA,6,1|2\n"))
				return err
			},
			want: domain.ErrValidation,
		},
		{
			name: "unknown traffic",
			run: func() error {
				_, err := ParseRoutesCSV(strings.NewReader("route_id,distance_km,traffic_level,base_time_min\n1,5,Gridlock,30\n"))
				return err
			},
			want: domain.ErrValidation,
		},
		{
			name: "bad delivery time",
			run: func() error {
				_, err := ParseOrdersCSV(strings.NewReader("order_id,value_rs,route_id,delivery_time\n1,100,1,9am\n"))
				return err
			},
			want: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseRoutesCSV(strings.NewReader("route_id,distance_km\n1,5\n")); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestSeedFromCSVUpserts(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	dir := t.TempDir()

	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write(DriversCSV, "name,shift_hours,past_week_hours\nAmit,6,6|8|7|7|7|6|10\n")
	write(RoutesCSV, "route_id,distance_km,traffic_level,base_time_min\n1,25,High,125\n2,12,Low,48\n")
	write(OrdersCSV, "order_id,value_rs,route_id,delivery_time\n1,2594,1,02:07\n2,1835,2,01:19\n")

	if err := SeedFromCSV(ctx, db, SQLite, dir); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	write(DriversCSV, "name,shift_hours,past_week_hours\nAmit,8,6|8|7|7|7|6|4\n")
	write(RoutesCSV, "route_id,distance_km,traffic_level,base_time_min\n1,30,Medium,125\n2,12,Low,48\n")
	if err := SeedFromCSV(ctx, db, SQLite, dir); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	store := NewSQLStore(db, SQLite)

	drivers, err := store.ListDrivers(ctx)
	if err != nil {
		t.Fatalf("list drivers: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ShiftHours != 8 || drivers[0].PastWeekHours[6] != 4 {
		t.Fatalf("got %+v, want one updated Amit", drivers)
	}

	route, err := store.GetRoute(ctx, 1)
	if err != nil {
		t.Fatalf("get route: %v", err)
	}
	if route.DistanceKm != 30 || route.TrafficLevel != domain.TrafficMedium {
		t.Fatalf("got %+v, want updated route 1", route)
	}

	orders, err := store.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 2 || orders[0].DeliveryTime.String() != "02:07" || orders[0].Status != domain.OrderPending {
		t.Fatalf("got %+v, want two pending orders", orders)
	}
}

func TestSeedFromCSVUnknownRoute(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()

	files := map[string]string{
		DriversCSV: "name,shift_hours,past_week_hours\n",
		RoutesCSV:  "route_id,distance_km,traffic_level,base_time_min\n",
		OrdersCSV:  "order_id,value_rs,route_id,delivery_time\n1,100,9,10:00\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := SeedFromCSV(context.Background(), db, SQLite, dir); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
