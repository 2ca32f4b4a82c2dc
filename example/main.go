// Example usage of the Wyvern SDK Go
package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	wyvernsdk "github.com/nftex/wyvern-sdk-go"
	"github.com/nftex/wyvern-sdk-go/chain"
)

func main() {
	// Load RPC_URL and PRIVATE_KEY from .env
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}

	config := wyvernsdk.ClientConfig{
		RPCURL:     os.Getenv("RPC_URL"),
		PrivateKey: os.Getenv("PRIVATE_KEY"),
		ChainID:    wyvernsdk.ChainIDRinkeby,
		// Contract addresses default to the chain's protocol deployment.
	}

	client, err := wyvernsdk.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	asset := chain.Asset{
		TokenID:  big.NewInt(1),
		Address:  common.HexToAddress("0x16baf0de678e52367adc69fd067e5edd1d33e3bf"), // Replace with actual collection
		Quantity: big.NewInt(1),
		Schema:   chain.SchemaERC721,
	}

	// Example: estimate listing costs before doing anything
	fmt.Println("Estimating fees...")
	fees, err := client.EstimateFees(ctx, []chain.Asset{asset})
	if err != nil {
		log.Printf("Failed to estimate fees: %v", err)
	} else {
		fmt.Printf("Fee breakdown: %+v\n", fees)
	}

	// Example: list the asset at a fixed price of 1.5 ETH
	fmt.Println("\nCreating sell order...")
	sellOrder, err := client.CreateSellOrder(ctx, wyvernsdk.SellOrderParams{
		Asset:       asset,
		StartAmount: decimal.RequireFromString("1.5"),
		Fees: wyvernsdk.FeeSchedule{
			MarketplaceSellerFeeBPS: 250,
			CollectionSellerFeeBPS:  500,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create sell order: %v", err)
	}
	fmt.Printf("Sell order hash: %s\n", sellOrder.Hash.Hex())

	// Example: make a 1.2 WETH offer on the same asset
	fmt.Println("\nCreating buy order...")
	buyOrder, err := client.CreateBuyOrder(ctx, wyvernsdk.BuyOrderParams{
		Asset:  asset,
		Amount: decimal.RequireFromString("1.2"),
		Fees: wyvernsdk.FeeSchedule{
			MarketplaceSellerFeeBPS: 250,
			CollectionSellerFeeBPS:  500,
		},
	})
	if err != nil {
		log.Printf("Failed to create buy order: %v", err)
	} else {
		fmt.Printf("Buy order hash: %s\n", buyOrder.Hash.Hex())
	}

	// Example: fulfill the sell order at its listed price
	fmt.Println("\nFulfilling sell order...")
	txHash, err := client.FulfillOrder(ctx, sellOrder, nil)
	if err != nil {
		log.Printf("Failed to fulfill order: %v", err)
	} else {
		fmt.Printf("Match transaction: %s\n", txHash.Hex())
	}

	// Example: cancel the sell order
	fmt.Println("\nCancelling sell order...")
	if err := client.CancelOrder(ctx, sellOrder); err != nil {
		log.Printf("Failed to cancel order: %v", err)
	} else {
		fmt.Println("Order cancelled")
	}
}
