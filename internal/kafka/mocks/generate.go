//go:generate mockgen -source=../consumer.go -destination=./mock_consumer_deps.go -package=mocks
//go:generate mockgen -source=../producer.go -destination=./mock_producer_deps.go -package=mocks

package mocks
